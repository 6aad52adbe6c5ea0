package identity

import "github.com/jrsteele09/foodwaste-zero/internal/utils"

// UserProfile is the payload of GET /users/me. The session core only forwards
// it for display.
type UserProfile struct {
	ID            utils.ID `json:"id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name,omitempty"`
	HouseholdSize int      `json:"household_size,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// ProfileUpdate is the partial body of PUT /users/me. Nil fields are omitted.
type ProfileUpdate struct {
	Email         *string `json:"email,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	HouseholdSize *int    `json:"household_size,omitempty"`
	Password      *string `json:"password,omitempty"`
}
