package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// JobContext is the job information a resume is analyzed against.
type JobContext struct {
	JobID       int
	Title       string
	CompanyName string
	Description string
}

// Contact is what the candidate fills in next to the resume upload.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Contact field names used as validation error keys.
const (
	ContactName  = "name"
	ContactEmail = "email"
	ContactPhone = "phone"
)

var contactRules = map[string][]validation.Rule{
	ContactName: {
		validation.Required.Error("Name must be at least 2 characters"),
		validation.RuneLength(2, 0).Error("Name must be at least 2 characters"),
	},
	ContactEmail: {
		validation.Required.Error("Please enter a valid email address"),
		is.Email.Error("Please enter a valid email address"),
	},
	ContactPhone: {
		validation.Required.Error("Please enter a valid phone number"),
		validation.RuneLength(10, 0).Error("Please enter a valid phone number"),
	},
}

func (c Contact) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)

	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, contactRules[ContactName]...),
		validation.Field(&c.Email, contactRules[ContactEmail]...),
		validation.Field(&c.Phone, contactRules[ContactPhone]...),
	)
}

// ValidateContactField checks a single field the way the upload form does
// while the candidate types.
func ValidateContactField(field, value string) error {
	rules, ok := contactRules[field]
	if !ok {
		return fmt.Errorf("unknown contact field %q", field)
	}
	return validation.Validate(strings.TrimSpace(value), rules...)
}

// Resume is an uploaded resume file.
type Resume struct {
	Filename string
	Content  []byte
	Contact  Contact
}

var ErrEmptyResume = errors.New("please upload your resume")

func (r Resume) Validate() error {
	if strings.TrimSpace(r.Filename) == "" || len(r.Content) == 0 {
		return ErrEmptyResume
	}
	return r.Contact.Validate()
}

// MatchAnalysis is the server-computed compatibility between a resume and a job.
// A fresh submission replaces it; it is never mutated.
type MatchAnalysis struct {
	MatchScore   float64  `json:"match_score" mapstructure:"match_score"`
	Feedback     string   `json:"feedback" mapstructure:"feedback"`
	Strengths    []string `json:"strengths,omitempty" mapstructure:"strengths"`
	Improvements []string `json:"improvements,omitempty" mapstructure:"improvements"`
}

// Candidate is a read-only projection of the candidate record owned by the API.
type Candidate struct {
	ID        int    `json:"id" mapstructure:"id"`
	FirstName string `json:"first_name" mapstructure:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name"`
	Email     string `json:"email" mapstructure:"email"`
	Phone     string `json:"phone" mapstructure:"phone"`
	Status    string `json:"status" mapstructure:"status"`
}

// ResumeResult is what the resume analysis service returns.
type ResumeResult struct {
	Candidate  *Candidate
	Analysis   MatchAnalysis
	ResumeText string
}

// ResumeSubmitter sends a resume with its job context to the analysis service.
type ResumeSubmitter interface {
	SubmitResume(ctx context.Context, job JobContext, resume Resume) (*ResumeResult, error)
}
