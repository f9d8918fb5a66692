package domain

// User is an authenticated Yale user. NetID is the only field guaranteed by
// CAS itself; Profile is best-effort enrichment from the Yalies directory and
// may be nil.
type User struct {
	NetID   string   `json:"netid"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile holds directory attributes for a user. Every field is optional.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	College   string `json:"college,omitempty"`
	Year      string `json:"year,omitempty"`
	Major     string `json:"major,omitempty"`
	Image     string `json:"image,omitempty"`
}

// DisplayName returns the best available human-readable name for the user.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.FirstName != "" {
		if u.Profile.LastName != "" {
			return u.Profile.FirstName + " " + u.Profile.LastName
		}
		return u.Profile.FirstName
	}
	return u.NetID
}
