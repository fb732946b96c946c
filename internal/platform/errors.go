package platform

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Status     string
	// Message is the human readable detail sent by the API, if any.
	Message string
}

func newAPIError(resp *response) *APIError {
	return &APIError{
		StatusCode: resp.statusCode,
		Status:     resp.status,
		Message:    errorMessage(resp.body),
	}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Message)
}

// Detail is shown to the candidate instead of a generic message.
func (e *APIError) Detail() string {
	return e.Message
}

// errorMessage extracts the error text. The API answers with either
// {"detail": "..."}, a validation list {"detail": [{"msg": ...}]} or
// {"errors": [{"msg": ...}]}.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		return joinMessages(detail.Get("#.msg"))
	}

	if errs := gjson.GetBytes(body, "errors.#.msg"); errs.Exists() {
		return joinMessages(errs)
	}

	return gjson.GetBytes(body, "message").String()
}

func joinMessages(result gjson.Result) string {
	var msgs []string
	for _, msg := range result.Array() {
		if s := strings.TrimSpace(msg.String()); s != "" {
			msgs = append(msgs, s)
		}
	}

	return strings.Join(msgs, ", ")
}
