// Package dictionary checks whether terms exist in an online English
// dictionary and caches the answers.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
)

// DefaultEndpoint is the free dictionary API base URL.
const DefaultEndpoint = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Lookup reports whether a term exists in a dictionary.
type Lookup interface {
	Has(ctx context.Context, term string) (bool, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, term string) (bool, error)

// Has calls f.
func (f LookupFunc) Has(ctx context.Context, term string) (bool, error) {
	return f(ctx, term)
}

// Client queries a dictionary endpoint of the form <Endpoint>/<term>.
type Client struct {
	Endpoint string

	HTTPClient *http.Client
}

// Has reports whether term has at least one dictionary entry. Not-found and
// other client errors are a definitive "no". Rate limits, server errors and
// transport failures are returned as errors wrapping
// internalerr.ErrRetryable.
func (c *Client) Has(ctx context.Context, term string) (bool, error) {
	term = ingest.NormalizeWord(term)
	if term == "" {
		return false, nil
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	target := strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("dictionary: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("dictionary: %w: %v", internalerr.ErrRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		se := &internalerr.StatusError{Service: "dictionary", StatusCode: resp.StatusCode}
		if se.Retryable() {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			se.Body = strings.TrimSpace(string(body))
			return false, se
		}
		return false, nil
	}

	var entries []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		// A 200 that is not an array of entries is not a match.
		return false, nil
	}
	return len(entries) > 0, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
