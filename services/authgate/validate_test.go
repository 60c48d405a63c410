package authgate

import (
	"testing"

	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		form LoginForm
		want FieldErrors
	}{
		{
			name: "valid",
			form: LoginForm{Email: "student@campus.edu", Password: "secret1"},
			want: FieldErrors{},
		},
		{
			name: "bad email and short password",
			form: LoginForm{Email: "bad", Password: "123"},
			want: FieldErrors{
				"email":    "Please enter a valid email address",
				"password": "Password must be at least 6 characters",
			},
		},
		{
			name: "email is trimmed",
			form: LoginForm{Email: "  student@campus.edu  ", Password: "secret1"},
			want: FieldErrors{},
		},
		{
			name: "empty form",
			form: LoginForm{},
			want: FieldErrors{
				"email":    "Please enter a valid email address",
				"password": "Password must be at least 6 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidateLogin(tt.form))
		})
	}
}

func TestValidateSignup(t *testing.T) {
	v := NewValidator()

	t.Run("short name is the only error", func(t *testing.T) {
		errs := v.ValidateSignup(SignupForm{Email: "a@b.com", Password: "secret1", FullName: "A"})
		assert.Equal(t, FieldErrors{"fullName": "Name must be at least 2 characters"}, errs)
	})

	t.Run("name is trimmed before counting", func(t *testing.T) {
		errs := v.ValidateSignup(SignupForm{Email: "a@b.com", Password: "secret1", FullName: "  A  "})
		assert.Contains(t, errs, "fullName")
	})

	t.Run("long name", func(t *testing.T) {
		long := make([]rune, 101)
		for i := range long {
			long[i] = 'x'
		}
		errs := v.ValidateSignup(SignupForm{Email: "a@b.com", Password: "secret1", FullName: string(long)})
		assert.Equal(t, "Name is too long", errs["fullName"])
	})

	t.Run("role defaults to student", func(t *testing.T) {
		form := SignupForm{Email: "a@b.com", Password: "secret1", FullName: "Ada Lovelace"}
		assert.Empty(t, v.ValidateSignup(form))
		assert.Equal(t, model.UserRoleStudent, form.Normalize().Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		errs := v.ValidateSignup(SignupForm{Email: "a@b.com", Password: "secret1", FullName: "Ada", Role: "admin"})
		assert.Equal(t, FieldErrors{"role": "Please choose either student or teacher"}, errs)
	})

	t.Run("every error collected", func(t *testing.T) {
		errs := v.ValidateSignup(SignupForm{Email: "x", Password: "1", FullName: "", Role: "dean"})
		assert.Len(t, errs, 4)
	})
}

func TestValidationIsRecomputed(t *testing.T) {
	v := NewValidator()
	first := v.ValidateLogin(LoginForm{Email: "bad", Password: "123"})
	assert.Len(t, first, 2)

	second := v.ValidateLogin(LoginForm{Email: "ok@campus.edu", Password: "123"})
	assert.Equal(t, FieldErrors{"password": "Password must be at least 6 characters"}, second)
	assert.Len(t, first, 2, "earlier result must not be mutated")
}
