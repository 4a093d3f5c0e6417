package user

import (
	"time"

	"github.com/FACorreiaa/bet-user-api/internal/api"
	"github.com/FACorreiaa/bet-user-api/internal/api/vo"
)

// User is the persisted account entity. The id is assigned by the store on
// creation and immutable afterwards; the password is stored only as a bcrypt
// hash and never serialized.
type User struct {
	ID           int64     `json:"id"`
	ClientName   string    `json:"clientName"`
	Email        string    `json:"email"`
	RegisterDate time.Time `json:"registerDate"`
	BetMaxValue  *float64  `json:"betMaxValue,omitempty"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UserPixKey   *string   `json:"userPixKey,omitempty"`
}

// CreateUserParams carries the validated payload for user creation. Value
// objects arrive pre-validated from JSON decoding; Validate catches the
// absent ones and payload-level rules in a single pass.
type CreateUserParams struct {
	ClientName  string       `json:"clientName"`
	Email       *vo.Email    `json:"email"`
	BetMaxValue *float64     `json:"betMaxValue,omitempty"`
	Username    *vo.Username `json:"username"`
	Password    *vo.Password `json:"password"`
	UserPixKey  *string      `json:"userPixKey,omitempty"`
}

// Validate reports every violated field at once.
func (p CreateUserParams) Validate() api.ValidationError {
	var ve api.ValidationError
	if p.ClientName == "" {
		ve = append(ve, api.FieldError{Field: "clientName", Msg: "required"})
	}
	if p.Email == nil {
		ve = append(ve, api.FieldError{Field: "email", Msg: "required"})
	}
	if p.Username == nil {
		ve = append(ve, api.FieldError{Field: "username", Msg: "required"})
	}
	if p.Password == nil {
		ve = append(ve, api.FieldError{Field: "password", Msg: "required"})
	}
	if p.BetMaxValue != nil && *p.BetMaxValue < 0 {
		ve = append(ve, api.FieldError{Field: "betMaxValue", Msg: "cannot be less than 0"})
	}
	return ve
}

// UpdateUserParams uses pointer fields for partial-merge updates: only the
// fields present in the payload overwrite the stored user. Username and
// password are not updatable through this path; the password changes only
// through the reset flow.
type UpdateUserParams struct {
	ClientName  *string   `json:"clientName,omitempty"`
	Email       *vo.Email `json:"email,omitempty"`
	BetMaxValue *float64  `json:"betMaxValue,omitempty"`
	UserPixKey  *string   `json:"userPixKey,omitempty"`
}

// Validate reports payload-level violations for update requests.
func (p UpdateUserParams) Validate() api.ValidationError {
	var ve api.ValidationError
	if p.ClientName != nil && *p.ClientName == "" {
		ve = append(ve, api.FieldError{Field: "clientName", Msg: "cannot be blank"})
	}
	if p.BetMaxValue != nil && *p.BetMaxValue < 0 {
		ve = append(ve, api.FieldError{Field: "betMaxValue", Msg: "cannot be less than 0"})
	}
	return ve
}

// ResetPasswordParams carries the credentials for the password reset flow.
// Both arrive as plain strings; the new password is hashed before storage.
type ResetPasswordParams struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
