package domain

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var entityRefPattern = regexp.MustCompile(`^.+:.+/.+$`)

var validate = NewValidator()

// NewValidator returns a validator with the "entityref" tag registered. The tag
// accepts strings of the form <kind>:<namespace>/<name>.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("entityref", func(fl validator.FieldLevel) bool {
		return entityRefPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering entityref validation: %v", err))
	}
	return v
}

// ValidateUserEntityRef checks that ref looks like user:default/name.
func ValidateUserEntityRef(ref string) error {
	if err := validate.Var(ref, "required,entityref"); err != nil {
		return fmt.Errorf("invalid user entity reference %q, expected <kind>:<namespace>/<name>", ref)
	}
	return nil
}
