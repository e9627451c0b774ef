package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError reports one rejected field value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	mobilePattern  = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,14}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	// GSTIN: state code, PAN, entity number, Z, check character.
	taxIDPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
)

// Mobile checks a phone number. Empty is allowed; the field is optional
// everywhere it appears.
func Mobile(value string) *FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !mobilePattern.MatchString(value) {
		return &FieldError{Field: "mobile", Message: "must be a phone number"}
	}
	return nil
}

// Pincode checks an Indian postal code. Empty is allowed.
func Pincode(value string) *FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !pincodePattern.MatchString(value) {
		return &FieldError{Field: "pincode", Message: "must be a 6-digit postal code"}
	}
	return nil
}

// TaxID checks a GST identification number. Empty is allowed.
func TaxID(value string) *FieldError {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return nil
	}
	if !taxIDPattern.MatchString(value) {
		return &FieldError{Field: "taxId", Message: "must be a valid GSTIN"}
	}
	return nil
}

// Collect folds field checks into one error list.
func Collect(checks ...*FieldError) []FieldError {
	var errs []FieldError
	for _, check := range checks {
		if check != nil {
			errs = append(errs, *check)
		}
	}
	return errs
}
