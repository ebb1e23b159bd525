package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tableboard/board-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

const csrfCookieName = "csrftoken"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	BaseURL  string
	BranchID string
	// HTTPClient should share Jar so that cookies travel with every call.
	HTTPClient HTTPClient
	Jar        http.CookieJar
	Logger     logrus.FieldLogger
}

type Client struct {
	baseURL  string
	base     *url.URL
	branchID string
	http     HTTPClient
	jar      http.CookieJar
	logger   logrus.FieldLogger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Jar: opts.Jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL:  base.String(),
		base:     base,
		branchID: opts.BranchID,
		http:     httpClient,
		jar:      opts.Jar,
		logger:   logger.WithField("module", "apiclient"),
	}, nil
}

func (c *Client) BranchID() string { return c.branchID }

func (c *Client) csrfToken() string {
	if c.jar == nil {
		return ""
	}
	for _, cookie := range c.jar.Cookies(c.base) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) request(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if isMutating(method) {
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"method": method, "endpoint": endpoint}).WithError(err).Error("backend unreachable")
		return &RequestError{Method: method, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, ok := errorMessage(raw)
		if !ok {
			msg = genericStatusMessage(resp.StatusCode)
		}
		c.logger.WithFields(logrus.Fields{
			"method":   method,
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn(msg)
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    genericStatusMessage(resp.StatusCode) + ": " + ErrParseFailed.Error(),
			Parse:      true,
			Err:        err,
		}
	}
	return nil
}

// list accepts both a pagination envelope and a bare JSON array.
func list[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (domain.Page[T], error) {
	var raw json.RawMessage
	if err := c.request(ctx, http.MethodGet, endpoint, query, nil, &raw); err != nil {
		return domain.Page[T]{}, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.Page[T]{Results: []T{}}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return domain.Page[T]{}, parseError(endpoint, err)
		}
		return domain.Page[T]{Count: len(items), Results: items}, nil
	}

	var page domain.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return domain.Page[T]{}, parseError(endpoint, err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page, nil
}

func parseError(endpoint string, err error) error {
	return &RequestError{
		Method:     http.MethodGet,
		Endpoint:   endpoint,
		StatusCode: http.StatusOK,
		Message:    "unexpected response shape: " + err.Error(),
		Parse:      true,
		Err:        err,
	}
}
