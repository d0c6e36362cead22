package service

import (
	"regexp"

	"github.com/dtroode/accounts-server/internal/apperrors"
)

// emailPattern accepts local@domain.tld shaped addresses.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]+$`)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewErrValidation("Invalid email")
	}
	return nil
}
