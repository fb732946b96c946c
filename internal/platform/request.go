package platform

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	formContentType = "application/x-www-form-urlencoded"
	logPreviewLimit = 300
)

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	// anonymous requests carry no token and are never retried.
	anonymous bool
}

type response struct {
	statusCode int
	status     string
	body       []byte
}

func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	data, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return err
	}

	return decodeJSON(data, target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	data, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body, contentType: contentType})
	if err != nil {
		return err
	}

	return decodeJSON(data, target)
}

func (c *Client) postForm(ctx context.Context, path string, values url.Values, target interface{}) error {
	data, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        []byte(values.Encode()),
		contentType: formContentType,
		anonymous:   true,
	})
	if err != nil {
		return err
	}

	return decodeJSON(data, target)
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, file formFile, target interface{}) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile(file.field, file.filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(file.content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	data, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        b.Bytes(),
		contentType: w.FormDataContentType(),
	})
	if err != nil {
		return err
	}

	return decodeJSON(data, target)
}

// do sends the request. A 401 answer refreshes the session and repeats the
// request once.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}

	if resp.statusCode == http.StatusUnauthorized && !r.anonymous && c.session != nil {
		c.logger.Info("access token rejected, refreshing session", zap.String("path", r.path))

		if err := c.session.Refresh(ctx, c); err != nil {
			return nil, fmt.Errorf("%w: %w", newAPIError(resp), err)
		}

		resp, err = c.send(ctx, r)
		if err != nil {
			return nil, err
		}
	}

	if resp.statusCode < http.StatusOK || resp.statusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(resp)
		c.logger.Debug("request failed",
			zap.String("path", r.path),
			zap.Int("status", resp.statusCode),
			zap.String("body", utils.TruncateForLog(string(resp.body), logPreviewLimit)),
		)
		return nil, apiErr
	}

	return resp.body, nil
}

func (c *Client) send(ctx context.Context, r request) (*response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.path), body)
	if err != nil {
		return nil, err
	}

	if err := c.setHeaders(req, r); err != nil {
		return nil, err
	}

	c.logger.Debug("make request", zap.String("method", r.method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	return &response{
		statusCode: resp.StatusCode,
		status:     resp.Status,
		body:       data,
	}, nil
}

func (c *Client) setHeaders(req *http.Request, r request) error {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	if r.anonymous || c.session == nil {
		return nil
	}

	token, err := c.session.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

func decodeJSON(data []byte, target interface{}) error {
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
