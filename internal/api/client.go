package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hobbyhub/profile-client/internal/auth"
)

const RequestIDHeader = "X-Request-ID"

// Client calls the hobby/social REST API on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
	log        zerolog.Logger
}

// NewClient builds a client for baseURL. A zero timeout means requests
// wait as long as their context allows.
func NewClient(baseURL string, session *auth.Session, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     session.Jar(),
			Timeout: timeout,
		},
		session: session,
		log:     logger.With().Str("component", "api").Logger(),
	}
}

// Session returns the cookie session the client sends with every request.
func (c *Client) Session() *auth.Session {
	return c.session
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindInvalid, Detail: "encode body", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindInvalid, Detail: "build request", Err: err}
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(auth.CSRFHeader, c.session.CSRFToken())
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if err := checkResp(resp, op); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Detail: "read body", Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}

// checkResp returns a KindStatus error carrying the response body when the
// status is not 2xx.
func checkResp(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return &Error{
		Op:     op,
		Kind:   KindStatus,
		Status: resp.StatusCode,
		Detail: strings.TrimSpace(string(body)),
	}
}

func userPath(id int64) string {
	return fmt.Sprintf("/api/users/%d/", id)
}
