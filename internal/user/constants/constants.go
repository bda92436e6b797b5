package constants

const (
	// Account field limits.
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxEmailLength    = 255

	// Event types.
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)
