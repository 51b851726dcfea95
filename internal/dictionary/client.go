// Package dictionary talks to the remote lookup and random-word services.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kalambet/lexis/internal/resource"
)

const (
	DefaultBaseURL   = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultRandomURL = "https://random-word-api.herokuapp.com"

	maxErrorBody = 4 << 10
)

var (
	// ErrNotFound means the lookup service has no entry for the word.
	ErrNotFound = errors.New("word meaning not found in the dictionary")
	// ErrTimeout means the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out, please try again")
)

// UpstreamError is any non-404 HTTP failure or transport error.
type UpstreamError struct {
	Status  int // 0 for transport errors
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "server error: " + e.Message
	}
	return fmt.Sprintf("server error: %d %s", e.Status, e.Message)
}

func (e *UpstreamError) ResourceKind() resource.Kind { return resource.KindUpstream }

// Client is a stateless wrapper around the lookup and random-word endpoints.
type Client struct {
	baseURL    string
	randomURL  string
	httpClient *http.Client
}

// New creates a Client. Empty URLs fall back to the public services.
// Deadlines come from the caller's context.
func New(baseURL, randomURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if randomURL == "" {
		randomURL = DefaultRandomURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		randomURL:  strings.TrimRight(randomURL, "/"),
		httpClient: &http.Client{},
	}
}

// Lookup fetches the entries for word. A 404 yields ErrNotFound.
func (c *Client) Lookup(ctx context.Context, word string) ([]WordInfoDTO, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, resource.Wrap(resource.KindNotFound, ErrNotFound)
	}

	var entries []WordInfoDTO
	if err := c.getJSON(ctx, c.baseURL+"/"+url.PathEscape(word), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RandomWord returns the first candidate from the random-word service.
func (c *Client) RandomWord(ctx context.Context) (string, error) {
	var words []string
	if err := c.getJSON(ctx, c.randomURL+"/word", &words); err != nil {
		return "", err
	}
	if len(words) == 0 || strings.TrimSpace(words[0]) == "" {
		return "", resource.Wrap(resource.KindParse, errors.New("random word service returned no words"))
	}
	return strings.TrimSpace(words[0]), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resource.Wrap(resource.KindNotFound, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if ctx.Err() != nil {
			return classifyTransport(ctx, err)
		}
		return resource.Wrap(resource.KindParse, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return resource.Wrap(resource.KindTimeout, ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &UpstreamError{Message: err.Error()}
}
