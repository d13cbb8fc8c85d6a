package model

// Session is the authenticated identity of one visitor.
type Session struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// DisplayName is "first last" when a first name is known, else the username.
func (s *Session) DisplayName() string {
	if s.FirstName == "" {
		return s.Username
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Username        string `json:"username" validate:"required,min=1,max=150"`
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName        string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type Profile struct {
	ID         int64  `json:"id,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	DateJoined string `json:"date_joined,omitempty"`
}

// Session projects the profile onto the identity the rest of the client uses.
func (p *Profile) Session() *Session {
	return &Session{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

type ProfileUpdate struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// Empty reports whether the update changes nothing.
func (u *ProfileUpdate) Empty() bool {
	return u.Email == nil && u.FirstName == nil && u.LastName == nil && u.Phone == nil
}
