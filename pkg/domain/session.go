package domain

import "errors"

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}

// Validate rejects a response without a token or a usable user.
func (a AuthResponse) Validate() error {
	if a.AccessToken == "" {
		return errors.New("missing access_token")
	}
	return a.User.Validate()
}

// MyProfile is the /users/me payload. NextDrawAt is nil when a draw is available now.
type MyProfile struct {
	User       Profile    `json:"user"`
	NextDrawAt *Timestamp `json:"next_draw_at"`
}

func (m MyProfile) Validate() error {
	return m.User.Validate()
}

// RegistrationStatus reports whether self-registration is open.
type RegistrationStatus struct {
	IsOpen bool `json:"is_open"`
}
