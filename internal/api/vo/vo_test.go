package vo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		e, err := NewEmail("  user@example.com  ")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", e.Value())
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := NewEmail("   ")
		assert.ErrorIs(t, err, ErrBlankEmail)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewEmail("")
		assert.ErrorIs(t, err, ErrBlankEmail)
	})

	t.Run("MissingAtSign", func(t *testing.T) {
		_, err := NewEmail("user.example.com")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestNewUsername(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		u, err := NewUsername(" betuser ")
		require.NoError(t, err)
		assert.Equal(t, "betuser", u.Value())
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := NewUsername(" \t ")
		assert.ErrorIs(t, err, ErrBlankUsername)
	})
}

func TestNewPassword(t *testing.T) {
	t.Run("MinimumLength", func(t *testing.T) {
		p, err := NewPassword("abcd")
		require.NoError(t, err)
		assert.Equal(t, "abcd", p.Value())
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := NewPassword("abc")
		assert.ErrorIs(t, err, ErrShortPassword)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewPassword("")
		assert.ErrorIs(t, err, ErrShortPassword)
	})

	t.Run("StoresPlaintextUnhashed", func(t *testing.T) {
		// Hashing is the service layer's job, not the value object's.
		p, err := NewPassword("s3cret")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", p.Value())
	})
}

func TestUnmarshalJSON(t *testing.T) {
	t.Run("EmailWireForm", func(t *testing.T) {
		var e Email
		err := json.Unmarshal([]byte(`{"value": "a@b.com"}`), &e)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", e.Value())
	})

	t.Run("InvalidEmailFailsDecode", func(t *testing.T) {
		var e Email
		err := json.Unmarshal([]byte(`{"value": "not-an-email"}`), &e)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("ShortPasswordFailsDecode", func(t *testing.T) {
		var p Password
		err := json.Unmarshal([]byte(`{"value": "abc"}`), &p)
		assert.ErrorIs(t, err, ErrShortPassword)
	})

	t.Run("EmailRoundTrip", func(t *testing.T) {
		e, err := NewEmail("a@b.com")
		require.NoError(t, err)
		data, err := json.Marshal(e)
		require.NoError(t, err)
		assert.JSONEq(t, `{"value": "a@b.com"}`, string(data))
	})

	t.Run("PasswordNeverSerializes", func(t *testing.T) {
		p, err := NewPassword("abcd")
		require.NoError(t, err)
		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"value": ""}`, string(data))
	})
}
