package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
)

const apiPublicAccessPath = "/interviews/public/access/%s"

// Detail messages of the access endpoint.
const (
	detailLinkInactive = "Link is inactive"
	detailLinkExpired  = "Link has expired"
)

// PublicLink is the access endpoint payload. Its id is the interview the
// questions are generated for.
type PublicLink struct {
	ID          int    `mapstructure:"id"`
	JobID       int    `mapstructure:"job_id"`
	InterviewID int    `mapstructure:"interview_id"`
	Name        string `mapstructure:"name"`
	AccessCode  string `mapstructure:"access_code"`
	IsActive    bool   `mapstructure:"is_active"`
	ExpiresAt   string `mapstructure:"expires_at"`
	Visits      int    `mapstructure:"visits"`
	Job         struct {
		ID           int    `mapstructure:"id"`
		Title        string `mapstructure:"title"`
		Description  string `mapstructure:"description"`
		Requirements string `mapstructure:"requirements"`
		Location     string `mapstructure:"location"`
		Type         string `mapstructure:"type"`
		CompanyName  string `mapstructure:"company_name"`
		Company      struct {
			ID   int    `mapstructure:"id"`
			Name string `mapstructure:"name"`
		} `mapstructure:"company"`
	} `mapstructure:"job"`
}

// LinkByAccessCode looks up a public interview link. Unknown codes return
// interview.ErrLinkNotFound; inactive and expired links are reported by the
// API with a detail message and mapped to the matching interview errors.
func (c *Client) LinkByAccessCode(ctx context.Context, accessCode string) (*interview.InterviewLink, error) {
	path := fmt.Sprintf(apiPublicAccessPath, url.PathEscape(accessCode))

	var raw map[string]interface{}
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, linkError(err)
	}

	link, err := decodePublicLink(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("public link loaded",
		zap.Int("link_id", link.ID),
		zap.Int("job_id", link.JobID),
		zap.Int("visits", link.Visits),
	)

	return link.toInterviewLink()
}

func linkError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", interview.ErrLinkNotFound, err)
	case strings.EqualFold(apiErr.Message, detailLinkInactive):
		return fmt.Errorf("%w: %w", interview.ErrInactiveLink, err)
	case strings.EqualFold(apiErr.Message, detailLinkExpired):
		return fmt.Errorf("%w: %w", interview.ErrExpiredLink, err)
	}

	return err
}

func decodePublicLink(raw map[string]interface{}) (*PublicLink, error) {
	var link PublicLink
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &link,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding public link: %w", err)
	}

	return &link, nil
}

func (l *PublicLink) toInterviewLink() (*interview.InterviewLink, error) {
	jobID := l.JobID
	if jobID == 0 {
		jobID = l.Job.ID
	}

	interviewID := l.ID
	if interviewID == 0 {
		interviewID = l.InterviewID
	}

	companyName := l.Job.CompanyName
	if companyName == "" {
		companyName = l.Job.Company.Name
	}

	link := &interview.InterviewLink{
		AccessCode:     l.AccessCode,
		JobID:          jobID,
		JobTitle:       l.Job.Title,
		CompanyName:    companyName,
		JobDescription: l.Job.Description,
		InterviewID:    interviewID,
		IsActive:       l.IsActive,
	}

	if l.ExpiresAt != "" {
		expiresAt, err := parseTime(l.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("parsing expires_at: %w", err)
		}
		link.ExpiresAt = &expiresAt
	}

	return link, nil
}

// parseTime accepts RFC 3339 and the zone-less ISO format the API uses for
// UTC timestamps.
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	return time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
}
