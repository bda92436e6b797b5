package constants

const (
	// UnknownArtist is stored when a release has no artist credit.
	UnknownArtist = "Unknown Artist"

	// Credit limits of the credits endpoint.
	DefaultCreditLimit = 10
	MaxCreditLimit     = 50

	// Search limits.
	DefaultSearchLimit = 25
	MaxSearchLimit     = 100

	// EventReleaseCached is published when a release row is first written.
	EventReleaseCached = "release.cached"
)
