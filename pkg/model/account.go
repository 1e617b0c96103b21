package model

import "time"

const (
	RoleMember    = "member"
	RoleOrganiser = "organiser"
)

// Account is a registered user. PasswordHash never leaves the service layer.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username" validate:"required"`
	PasswordHash string    `json:"-" bson:"password_hash" validate:"required"`
	Role         string    `json:"role" bson:"role" validate:"required,oneof=member organiser"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func (a *Account) IsOrganiser() bool {
	return a != nil && a.Role == RoleOrganiser
}

type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=5,max=100"`
	Role     string `json:"role" validate:"required,oneof=member organiser"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is what a successful login hands back to the caller.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account"`
}
