package session

import (
	"errors"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/go-playground/validator/v10"
)

// FormError is a local rejection of login or registration input. No request
// is sent when one is returned.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

var formValidate = validator.New()

// fieldMessages maps "Field.tag" to the message shown for that failure
var fieldMessages = map[string]string{
	"Email.required":    "Email is required",
	"Email.email":       "Invalid email address",
	"Username.required": "Username is required",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters",
}

// ValidateLogin checks login input before it is sent
func ValidateLogin(req models.LoginRequest) error {
	return checkForm(req)
}

// ValidateRegistration checks registration input before it is sent. The
// confirmation must match before any other rule is considered.
func ValidateRegistration(req models.RegisterRequest, confirmPassword string) error {
	if req.Password != confirmPassword {
		return &FormError{Field: "confirm_password", Message: "Passwords do not match"}
	}
	return checkForm(req)
}

func checkForm(form any) error {
	err := formValidate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	// Report the first failing field only
	fe := fieldErrs[0]
	msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid"
	}
	return &FormError{Field: fe.Field(), Message: msg}
}
