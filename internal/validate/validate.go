package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidUsername  = errors.New("username may contain only English letters, digits and _ (3-20 characters)")
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidBirthDate = errors.New("birth date must look like 2006-01-02")
	ErrEmptyField       = errors.New("all fields are required")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// New returns a validator with the "username" tag registered. The server
// installs it as echo's validator so that both sides share one rule.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return v
}

var std = New()

func Username(username string) error {
	if err := std.Var(username, "username"); err != nil {
		return ErrInvalidUsername
	}
	return nil
}

func Credentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}
	return nil
}

// Email accepts the empty string, the field being optional.
func Email(email string) error {
	if err := std.Var(email, "omitempty,email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func BirthDate(date string) error {
	if err := std.Var(date, "omitempty,datetime=2006-01-02"); err != nil {
		return ErrInvalidBirthDate
	}
	return nil
}

func NonEmpty(values ...string) error {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return ErrEmptyField
		}
	}
	return nil
}

// IsValidation reports whether err was produced by one of the checks above.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidUsername, ErrEmptyCredentials, ErrInvalidEmail, ErrInvalidBirthDate, ErrEmptyField} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Describe turns a validator failure into a message fit for an end user.
func Describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}

	fieldError := validationErrors[0]
	switch fieldError.Tag() {
	case "username":
		return ErrInvalidUsername.Error()
	case "email":
		return ErrInvalidEmail.Error()
	case "datetime":
		return ErrInvalidBirthDate.Error()
	case "required", "required_if":
		return fieldError.Field() + " is required"
	}

	return "invalid " + fieldError.Field()
}
