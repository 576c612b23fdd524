package commands

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// MinPasswordLength matches the platform-wide password policy
const MinPasswordLength = 14

var validate = validator.New()

// loginForm mirrors the sign-in form's client-side checks: they run before
// any network call and never mutate session state.
type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=14"`
}

// registerForm mirrors the sign-up form
type registerForm struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=14"`
	Role      string `validate:"required,oneof=client freedev"`
}

func validateLogin(email, password string) error {
	form := loginForm{Email: email, Password: password}
	if err := validate.Struct(form); err != nil {
		return formError(err)
	}
	return nil
}

func validateRegistration(reg client.Registration) error {
	form := registerForm{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  reg.Password,
		Role:      string(reg.Role),
	}
	if err := validate.Struct(form); err != nil {
		return formError(err)
	}
	return nil
}

// formError turns the first validator failure into a message a person can act
// on without knowing the struct layout.
func formError(err error) error {
	var verrs validator.ValidationErrors
	ok := false
	if verrs, ok = err.(validator.ValidationErrors); !ok || len(verrs) == 0 {
		return err
	}

	fieldErr := verrs[0]
	switch {
	case fieldErr.Field() == "Password" && fieldErr.Tag() == "min":
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	case fieldErr.Field() == "Email" && fieldErr.Tag() == "email":
		return fmt.Errorf("invalid email address")
	case fieldErr.Field() == "Role":
		return fmt.Errorf("role must be either %q or %q", client.RoleClient, client.RoleFreedev)
	case fieldErr.Tag() == "required":
		return fmt.Errorf("%s is required", fieldErr.Field())
	default:
		return err
	}
}
