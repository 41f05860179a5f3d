package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/arbscan/pkg/retrier"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// signFunc adds authentication headers. path is relative to the base URL.
type signFunc func(h http.Header, method, path, rawQuery string, body []byte)

// HTTPStatusError non-2xx response.
type HTTPStatusError struct {
	Venue      string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Venue, e.StatusCode, e.Body)
}

// restClient JSON over HTTP with signing and retries for idempotent reads.
type restClient struct {
	venue      string
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
	sign       signFunc
}

func newRESTClient(venue, baseURL string, sign signFunc) *restClient {
	return &restClient{
		venue:   venue,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retrier: retrier.New(
			retrier.WithMaxRetries(defaultMaxRetries),
			retrier.WithInitialInterval(defaultRetryDelay),
		),
		sign: sign,
	}
}

// get performs a GET, retrying transport errors, 5xx and 429.
func (c *restClient) get(ctx context.Context, path string, query url.Values, signed bool, out any) error {
	if signed && c.sign == nil {
		return errors.Errorf("%s client has no credentials", c.venue)
	}

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		err := c.send(ctx, http.MethodGet, path, query, nil, signed, out)
		if err == nil {
			return nil
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) &&
			statusErr.StatusCode < http.StatusInternalServerError &&
			statusErr.StatusCode != http.StatusTooManyRequests {
			return retrier.Permanent(err)
		}

		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return retrier.Permanent(err)
		}

		return err
	})
}

// post performs a single signed POST. Orders and withdrawals are never retried.
func (c *restClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	return c.send(ctx, http.MethodPost, path, nil, body, true, out)
}

func (c *restClient) send(ctx context.Context, method, path string, query url.Values, body []byte, signed bool, out any) error {
	rawQuery := ""
	if len(query) > 0 {
		rawQuery = query.Encode()
	}

	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if signed {
		if c.sign == nil {
			return errors.Errorf("%s client has no credentials", c.venue)
		}
		c.sign(req.Header, method, path, rawQuery, body)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s %s", c.venue, method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPStatusError{Venue: c.venue, StatusCode: resp.StatusCode, Body: truncate(string(respBody), 256)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", c.venue, path)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
