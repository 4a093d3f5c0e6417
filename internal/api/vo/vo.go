package vo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The value objects wrap a single validated string each. Construction is the
// only entry point; a constructed value is valid for its lifetime. On the
// wire they appear as {"value": "..."} objects, matching the API contract.

const MinPasswordLength = 4

var ErrBlankEmail = errors.New("email cannot be blank")
var ErrInvalidEmail = errors.New("email is invalid")
var ErrBlankUsername = errors.New("username cannot be blank")
var ErrShortPassword = fmt.Errorf("password must have at least %d characters", MinPasswordLength)

type Email struct {
	value string
}

// NewEmail validates and wraps an email address. The check is structural
// (non-blank, contains "@"), not full RFC validation.
func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Email{}, ErrBlankEmail
	}
	if !strings.Contains(trimmed, "@") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: trimmed}, nil
}

func (e Email) Value() string { return e.value }

func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Value: e.value})
}

func (e *Email) UnmarshalJSON(data []byte) error {
	raw, err := unwrap(data)
	if err != nil {
		return err
	}
	v, err := NewEmail(raw)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

type Username struct {
	value string
}

// NewUsername validates and wraps a username. Surrounding whitespace is
// trimmed before the blank check.
func NewUsername(raw string) (Username, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Username{}, ErrBlankUsername
	}
	return Username{value: trimmed}, nil
}

func (u Username) Value() string { return u.value }

func (u Username) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Value: u.value})
}

func (u *Username) UnmarshalJSON(data []byte) error {
	raw, err := unwrap(data)
	if err != nil {
		return err
	}
	v, err := NewUsername(raw)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

type Password struct {
	value string
}

// NewPassword validates and wraps a plaintext password. Hashing happens in
// the service layer, never here.
func NewPassword(raw string) (Password, error) {
	if len(raw) < MinPasswordLength {
		return Password{}, ErrShortPassword
	}
	return Password{value: raw}, nil
}

func (p Password) Value() string { return p.value }

// Passwords never serialize back out.
func (p Password) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{})
}

func (p *Password) UnmarshalJSON(data []byte) error {
	raw, err := unwrap(data)
	if err != nil {
		return err
	}
	v, err := NewPassword(raw)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type wireValue struct {
	Value string `json:"value"`
}

func unwrap(data []byte) (string, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return "", fmt.Errorf("value object must be a {\"value\": ...} object: %w", err)
	}
	return w.Value, nil
}
