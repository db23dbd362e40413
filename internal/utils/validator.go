// internal/utils/validator.go
package utils

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("prompt_id", validatePromptID)
	validate.RegisterValidation("tag_name", validateTagName)
	validate.RegisterValidation("hexhash", validateHexHash32)
	validate.RegisterValidation("hexsig", validateHexSig64)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

var identifierPattern = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	if len(username) < 3 || len(username) > 50 {
		return false
	}

	matched, _ := regexp.MatchString("^[a-zA-Z0-9_]+$", username)
	return matched
}

func validatePromptID(fl validator.FieldLevel) bool {
	return ValidatePromptID(fl.Field().String())
}

func validateTagName(fl validator.FieldLevel) bool {
	return ValidateTagName(fl.Field().String())
}

// 32-byte hash encoded as 64 hex characters.
func validateHexHash32(fl validator.FieldLevel) bool {
	return isHexOfLen(fl.Field().String(), 32)
}

// 64-byte signature encoded as 128 hex characters.
func validateHexSig64(fl validator.FieldLevel) bool {
	return isHexOfLen(fl.Field().String(), 64)
}

func isHexOfLen(s string, byteLen int) bool {
	if len(s) != byteLen*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ValidatePromptID checks length and charset (alphanumeric, underscore,
// hyphen only).
func ValidatePromptID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return identifierPattern.MatchString(id)
}

// ValidateTagName checks length and charset for tag names.
func ValidateTagName(tag string) bool {
	return tag != "" && len(tag) <= 32 && identifierPattern.MatchString(tag)
}

// ValidateVersionFormat does basic semver validation (x.y.z with numeric
// parts). Version creation accepts any string; this helper backs an
// optional pre-publish check only.
func ValidateVersionFormat(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return false
	}

	for _, part := range parts {
		if _, err := strconv.ParseUint(part, 10, 32); err != nil {
			return false
		}
	}

	return true
}

// AreVersionsCompatible treats a shared major version as compatible.
func AreVersionsCompatible(v1, v2 string) bool {
	p1 := strings.Split(v1, ".")
	p2 := strings.Split(v2, ".")

	if len(p1) != 3 || len(p2) != 3 {
		return false
	}

	return p1[0] == p2[0]
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	case "prompt_id":
		return "Prompt ID must be 1-64 characters of letters, numbers, underscores, and hyphens"
	case "tag_name":
		return "Tag name must be 1-32 characters of letters, numbers, underscores, and hyphens"
	case "hexhash":
		return e.Field() + " must be a 32-byte hex-encoded hash"
	case "hexsig":
		return e.Field() + " must be a 64-byte hex-encoded signature"
	default:
		return e.Field() + " is invalid"
	}
}
