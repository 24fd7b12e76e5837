package validator

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// phoneRegex is a regular expression to validate phone numbers.
var phoneRegex = regexp.MustCompile(`^\+[0-9\s\(\)\-]+$`)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("ethaddr", validateEthAddr)
	_ = v.RegisterValidation("hexbytes", validateHexBytes)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s interface{}) error {
	return v.validator.Struct(s)
}

// validatePhone validates a phone number.
func validatePhone(fl validator.FieldLevel) bool {
	// If the field is empty, it's valid (use required tag if it's required)
	if fl.Field().String() == "" {
		return true
	}

	// Use the pre-compiled regex for better performance
	return phoneRegex.MatchString(fl.Field().String())
}

// validateEthAddr validates a 20 byte hex identity address, with or without
// the 0x prefix.
func validateEthAddr(fl validator.FieldLevel) bool {
	// If the field is empty, it's valid (use required tag if it's required)
	if fl.Field().String() == "" {
		return true
	}

	return common.IsHexAddress(fl.Field().String())
}

// validateHexBytes validates a hex encoded byte string, with or without the
// 0x prefix.
func validateHexBytes(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	// If the field is empty, it's valid (use required tag if it's required)
	if s == "" {
		return true
	}

	_, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	return err == nil
}
