// Package finalize talks to the service that turns a finished stack into an
// algorithm text.
//
// The exchange is one POST of {cards, timestamp} answered by {algorithm}.
// There is no retry and no client-side timeout. Callers that show results to
// users convert failures with [Display], which yields "Error: <message>".
package finalize

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardstack/pkg/buildinfo"
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/observability"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// DefaultEndpoint is where a locally running service listens.
const DefaultEndpoint = "http://localhost:5000/api/generate_encryption"

// Request is the finalize request body.
type Request struct {
	Cards     []circuit.Card `json:"cards"`
	Timestamp string         `json:"timestamp"`
}

// Response is the finalize response body. Analysis is passed through
// undecoded when the service includes it.
type Response struct {
	Algorithm string          `json:"algorithm"`
	Analysis  json.RawMessage `json:"analysis,omitempty"`
}

// Client posts stacks to a finalize endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client for endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(endpoint); err != nil {
		return nil, err
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   log.New(io.Discard),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Finalize posts cards and returns the algorithm text. A non-2xx status
// yields a REMOTE_STATUS error, a transport failure a NETWORK_ERROR.
func (c *Client) Finalize(ctx context.Context, cards []circuit.Card) (string, error) {
	resp, err := c.Do(ctx, cards)
	if err != nil {
		return "", err
	}
	return resp.Algorithm, nil
}

// Do is Finalize returning the whole response.
func (c *Client) Do(ctx context.Context, cards []circuit.Card) (*Response, error) {
	start := time.Now()
	observability.Finalize().OnFinalizeStart(ctx, len(cards))
	resp, err := c.post(ctx, cards)
	observability.Finalize().OnFinalizeComplete(ctx, len(cards), time.Since(start), err)
	if err != nil {
		c.logger.Warn("finalize failed", "cards", len(cards), "err", err)
		return nil, err
	}
	c.logger.Info("finalized stack", "cards", len(cards), "algorithm_size", len(resp.Algorithm), "duration", time.Since(start))
	return resp, nil
}

func (c *Client) post(ctx context.Context, cards []circuit.Card) (*Response, error) {
	if cards == nil {
		cards = []circuit.Card{}
	}
	body, err := json.Marshal(Request{
		Cards:     cards,
		Timestamp: c.now().UTC().Format(TimestampFormat),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode finalize request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build finalize request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "post %s", c.endpoint)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.New(errors.ErrCodeRemoteStatus, "API responded with status: %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode finalize response")
	}
	return &out, nil
}

// Display converts a finalize outcome into the text shown to users: the
// algorithm on success, "Error: <message>" otherwise.
func Display(algorithm string, err error) string {
	if err != nil {
		return "Error: " + errors.UserMessage(err)
	}
	return algorithm
}
