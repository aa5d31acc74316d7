package form

import (
	"strings"

	"github.com/google/uuid"
)

// Submission is one contact request as entered into the form. Fields are
// stored trimmed; validation runs separately so a submission can be built
// from any transport first and checked once.
type Submission struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// NewSubmission builds a submission with a fresh ID and trimmed fields.
func NewSubmission(name, email, phone, service, message string) *Submission {
	return &Submission{
		ID:      uuid.New().String(),
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
		Service: strings.TrimSpace(service),
		Message: strings.TrimSpace(message),
	}
}
