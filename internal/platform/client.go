// Package platform is a client of the hiring platform REST API.
package platform

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/session"
)

var (
	_ interview.LinkLookup          = (*Client)(nil)
	_ interview.ResumeSubmitter     = (*Client)(nil)
	_ interview.QuestionGenerator   = (*Client)(nil)
	_ interview.QuestionRegenerator = (*Client)(nil)
	_ session.Refresher             = (*Client)(nil)
)

const (
	DefaultAPIURL = "http://localhost:8000/api"
	userAgent     = "spigell/hh-interviewer (spigelly@gmail.com)"
	// AI backed endpoints are slow.
	defaultTimeout = 2 * time.Minute
)

type Client struct {
	// session is optional. Public endpoints work without it.
	session    *session.Session
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiURL string, sess *session.Session) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Client{
		session: sess,
		logger:  logger,
		APIURL:  strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent: userAgent,
	}
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}
