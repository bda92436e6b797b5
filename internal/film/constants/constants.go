package constants

const (
	// Credit limits of the credits endpoint.
	DefaultCreditLimit = 10
	MaxCreditLimit     = 50

	// EventFilmCached is published when a film row is first written.
	EventFilmCached = "film.cached"
)

// CrewJobs are the crew jobs kept when caching credits.
var CrewJobs = map[string]bool{
	"Director":       true,
	"Writer":         true,
	"Screenplay":     true,
	"Composer":       true,
	"Producer":       true,
	"Cinematography": true,
}
