package authgate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sahilchouksey/smart-campus-api/model"
)

// FieldErrors maps a form field (json name) to its message.
type FieldErrors map[string]string

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=6"`
}

// SignupForm is the sign-up form. Role defaults to student.
type SignupForm struct {
	Email    string         `json:"email" validate:"email"`
	Password string         `json:"password" validate:"min=6"`
	FullName string         `json:"fullName" validate:"min=2,max=100"`
	Role     model.UserRole `json:"role" validate:"oneof=student teacher"`
}

var fieldMessages = map[string]map[string]string{
	"email":    {"email": "Please enter a valid email address"},
	"password": {"min": "Password must be at least 6 characters"},
	"fullName": {"min": "Name must be at least 2 characters", "max": "Name is too long"},
	"role":     {"oneof": "Please choose either student or teacher"},
}

// Validator checks auth forms. It collects every field error instead of
// stopping at the first one.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator keyed by json field names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Normalize trims the login form the way it is validated and submitted.
func (f LoginForm) Normalize() LoginForm {
	f.Email = strings.TrimSpace(f.Email)
	return f
}

// Normalize trims text fields and applies the default role.
func (f SignupForm) Normalize() SignupForm {
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	if f.Role == "" {
		f.Role = model.UserRoleStudent
	}
	return f
}

// ValidateLogin returns the field errors for f, empty when f is valid.
func (v *Validator) ValidateLogin(f LoginForm) FieldErrors {
	return v.check(f.Normalize())
}

// ValidateSignup returns the field errors for f, empty when f is valid.
func (v *Validator) ValidateSignup(f SignupForm) FieldErrors {
	return v.check(f.Normalize())
}

func (v *Validator) check(form any) FieldErrors {
	errs := FieldErrors{}
	err := v.validate.Struct(form)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		if msg, ok := fieldMessages[field][fe.Tag()]; ok {
			errs[field] = msg
		} else {
			errs[field] = field + " is invalid"
		}
	}
	return errs
}
