package domain

import (
	"errors"
	"fmt"
)

// RoleAdmin is the role allowed to call the /admin endpoints.
const RoleAdmin = "admin"

// qqAvatarURL is the external avatar template keyed by QQ number.
const qqAvatarURL = "https://q.qlogo.cn/g?b=qq&nk=%d&s=640"

// PublicProfile is the part of a user record visible to other users.
type PublicProfile struct {
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	Bio              string    `json:"bio"`
	AvatarURL        string    `json:"avatar_url"`
	BackgroundURL    string    `json:"background_url"`
	RegistrationDate Timestamp `json:"registration_date"`
	LastActiveDate   Timestamp `json:"last_active_date"`
	TotalDraws       int       `json:"total_draws"`
	HasDrawnToday    bool      `json:"has_drawn_today"`
	TodaysFortune    *Fortune  `json:"todays_fortune"`
	Status           string    `json:"status"`
	IsHidden         bool      `json:"is_hidden"`
	Tags             []string  `json:"tags"`
	QQ               *int64    `json:"qq"`
	UseQQAvatar      bool      `json:"use_qq_avatar"`
}

// Validate rejects a record without a username.
func (p PublicProfile) Validate() error {
	if p.Username == "" {
		return errors.New("missing username")
	}
	return nil
}

// Profile is the authenticated user's own record, including private fields.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
	PublicProfile
}

// Validate checks the fields every user record carries.
func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.New("missing user id")
	}
	return p.PublicProfile.Validate()
}

// Public drops the private fields.
func (p Profile) Public() PublicProfile {
	return p.PublicProfile
}

// IsAdmin reports whether the user may call the admin endpoints.
// The server enforces this; the client only uses it to show the admin tab.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Today returns today's fortune. It is only reported when HasDrawnToday is set.
func (p PublicProfile) Today() (Fortune, bool) {
	if !p.HasDrawnToday || p.TodaysFortune == nil {
		return "", false
	}
	return *p.TodaysFortune, true
}

// DisplayAvatarURL returns the avatar to show: the QQ avatar when enabled and a QQ
// number is set, else the stored avatar URL, else nothing.
func (p PublicProfile) DisplayAvatarURL() (string, bool) {
	if p.UseQQAvatar && p.QQ != nil {
		return QQAvatarURL(*p.QQ), true
	}
	if p.AvatarURL != "" {
		return p.AvatarURL, true
	}
	return "", false
}

// Name returns the display name, falling back to the username.
func (p PublicProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// QQAvatarURL builds the avatar URL for a QQ number.
func QQAvatarURL(qq int64) string {
	return fmt.Sprintf(qqAvatarURL, qq)
}

// ProfileView is either the caller's own profile or another user's public one.
type ProfileView struct {
	self   *Profile
	public *PublicProfile
}

// SelfView wraps the caller's own profile.
func SelfView(p Profile) ProfileView {
	return ProfileView{self: &p}
}

// OtherView wraps another user's public profile.
func OtherView(p PublicProfile) ProfileView {
	return ProfileView{public: &p}
}

// IsSelf reports whether the view holds the caller's own profile.
func (v ProfileView) IsSelf() bool {
	return v.self != nil
}

// IsZero reports whether the view holds nothing.
func (v ProfileView) IsZero() bool {
	return v.self == nil && v.public == nil
}

// Self returns the full profile when the view is the caller's own.
func (v ProfileView) Self() (Profile, bool) {
	if v.self == nil {
		return Profile{}, false
	}
	return *v.self, true
}

// Displayable projects either variant onto the public shape.
func (v ProfileView) Displayable() PublicProfile {
	switch {
	case v.self != nil:
		return v.self.Public()
	case v.public != nil:
		return *v.public
	}
	return PublicProfile{}
}
