package form

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen    = 2
	maxNameLen    = 100
	minMessageLen = 10
	maxMessageLen = 1000
	minPhoneLen   = 7
	maxPhoneLen   = 20
)

// FieldError reports one invalid form field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// ValidationErrors aggregates every invalid field of a submission, so the
// form can show all problems in one pass instead of one per attempt.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Validate checks the submission the way the contact form does: name and
// message are required with length bounds, email must be a plain address,
// phone is optional but must look like a phone number when present.
func (s *Submission) Validate() error {
	var errs ValidationErrors

	if n := utf8.RuneCountInString(s.Name); n < minNameLen || n > maxNameLen {
		errs = append(errs, FieldError{Field: "name", Reason: "must be between 2 and 100 characters"})
	}

	if s.Email == "" {
		errs = append(errs, FieldError{Field: "email", Reason: "is required"})
	} else if addr, err := mail.ParseAddress(s.Email); err != nil || addr.Address != s.Email {
		// reject display-name forms like "Bob <bob@example.com>", the form
		// wants a bare address
		errs = append(errs, FieldError{Field: "email", Reason: "is not a valid address"})
	}

	if s.Phone != "" {
		if n := len(s.Phone); n < minPhoneLen || n > maxPhoneLen || !isPhone(s.Phone) {
			errs = append(errs, FieldError{Field: "phone", Reason: "is not a valid phone number"})
		}
	}

	if n := utf8.RuneCountInString(s.Message); n < minMessageLen || n > maxMessageLen {
		errs = append(errs, FieldError{Field: "message", Reason: "must be between 10 and 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == '(' || r == ')' || r == '.' || r == ' ':
		default:
			return false
		}
	}
	return digits >= minPhoneLen
}
