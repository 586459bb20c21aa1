package validation

import (
	"regexp"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// RollNoPattern accepts institute roll numbers such as 21CS042 or ADMIN-01
	RollNoPattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,20}$`)

	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 8
)

// ValidPassword requires PasswordMinLength characters with at least one letter and one digit.
func ValidPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// ValidRollNo reports whether rollNo matches RollNoPattern.
func ValidRollNo(rollNo string) bool {
	return RollNoPattern.MatchString(rollNo)
}

var registerOnce sync.Once

// Register installs the "password" and "rollno" tags on gin's validator engine.
// It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("rollno", func(fl validator.FieldLevel) bool {
			return ValidRollNo(fl.Field().String())
		})
	})
}
