package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLinkNotFound is returned by a LinkLookup when no link matches the access code.
var ErrLinkNotFound = errors.New("link not found")

// InterviewLink is the job and interview context behind an access code.
// It is immutable for the life of a flow.
type InterviewLink struct {
	AccessCode     string
	JobID          int
	JobTitle       string
	CompanyName    string
	JobDescription string
	InterviewID    int
	IsActive       bool
	ExpiresAt      *time.Time
}

// Job returns the job context used by the resume and question steps.
func (l *InterviewLink) Job() JobContext {
	return JobContext{
		JobID:       l.JobID,
		Title:       l.JobTitle,
		CompanyName: l.CompanyName,
		Description: l.JobDescription,
	}
}

// LinkLookup fetches the raw link record for an access code.
type LinkLookup interface {
	LinkByAccessCode(ctx context.Context, accessCode string) (*InterviewLink, error)
}

// Resolver validates access codes. Callers must not assume an earlier
// resolution happened: every entry point resolves again.
type Resolver struct {
	lookup LinkLookup
	now    func() time.Time
}

func NewResolver(lookup LinkLookup) *Resolver {
	return &Resolver{lookup: lookup, now: time.Now}
}

// Resolve returns the link for accessCode or one of ErrInvalidLink,
// ErrInactiveLink and ErrExpiredLink.
func (r *Resolver) Resolve(ctx context.Context, accessCode string) (*InterviewLink, error) {
	accessCode = strings.TrimSpace(accessCode)
	if accessCode == "" {
		return nil, fmt.Errorf("%w: empty access code", ErrInvalidLink)
	}

	link, err := r.lookup.LinkByAccessCode(ctx, accessCode)
	switch {
	case errors.Is(err, ErrInactiveLink), errors.Is(err, ErrExpiredLink):
		return nil, err
	case errors.Is(err, ErrLinkNotFound):
		return nil, fmt.Errorf("%w: %s", ErrInvalidLink, accessCode)
	case err != nil:
		return nil, fmt.Errorf("%w: lookup %s: %v", ErrInvalidLink, accessCode, err)
	case link == nil:
		return nil, fmt.Errorf("%w: %s", ErrInvalidLink, accessCode)
	}

	if !link.IsActive {
		return nil, ErrInactiveLink
	}

	if link.ExpiresAt != nil && link.ExpiresAt.Before(r.now()) {
		return nil, ErrExpiredLink
	}

	if link.AccessCode == "" {
		link.AccessCode = accessCode
	}

	return link, nil
}
