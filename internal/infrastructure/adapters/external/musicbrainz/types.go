package musicbrainz

// Artist is the artist object embedded in an artist credit.
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name"`
	Disambiguation string `json:"disambiguation"`
	Type           string `json:"type"`
	Country        string `json:"country"`
}

// ArtistCredit is one entry of a release's artist credit.
type ArtistCredit struct {
	Name       string  `json:"name"`
	JoinPhrase string  `json:"joinphrase"`
	Artist     *Artist `json:"artist"`
}

// ReleaseGroup groups the releases of one album.
type ReleaseGroup struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PrimaryType string `json:"primary-type"`
}

// ReleaseResult is a single release from a search.
type ReleaseResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Score        int            `json:"score"`
	Country      string         `json:"country"`
	Status       string         `json:"status"`
	Date         string         `json:"date"`
	Barcode      string         `json:"barcode"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup *ReleaseGroup  `json:"release-group"`
}

// ArtistName returns the first credited name, or "" when there is none.
func (r *ReleaseResult) ArtistName() string {
	return firstCreditName(r.ArtistCredit)
}

// SearchResponse is the response of the release search endpoint.
type SearchResponse struct {
	Count    int             `json:"count"`
	Offset   int             `json:"offset"`
	Releases []ReleaseResult `json:"releases"`
}

// ReleaseDetails is a release lookup.
type ReleaseDetails struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       string         `json:"status"`
	Country      string         `json:"country"`
	Date         string         `json:"date"`
	Barcode      string         `json:"barcode"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup *ReleaseGroup  `json:"release-group"`
}

// ArtistName returns the first credited name, or "" when there is none.
func (r *ReleaseDetails) ArtistName() string {
	return firstCreditName(r.ArtistCredit)
}

// ReleaseGroupID returns the release group id, or "" when absent.
func (r *ReleaseDetails) ReleaseGroupID() string {
	if r.ReleaseGroup == nil {
		return ""
	}
	return r.ReleaseGroup.ID
}

func firstCreditName(credits []ArtistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	if credits[0].Name != "" {
		return credits[0].Name
	}
	if credits[0].Artist != nil {
		return credits[0].Artist.Name
	}
	return ""
}
