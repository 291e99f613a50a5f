// Package translate calls a remote translation endpoint and tracks how many
// characters have been translated.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
)

// Default retry parameters.
const (
	DefaultTargetLang  = "PT-BR"
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 300 * time.Millisecond
)

// StatusError is returned for non-2xx responses.
type StatusError = internalerr.StatusError

// Result is a translated text.
type Result struct {
	Text               string `json:"text"`
	DetectedSourceLang string `json:"detectedSourceLang,omitempty"`
}

type request struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

// Client posts {"text","targetLang"} to Endpoint and retries rate limits,
// server errors and transport failures with exponential backoff.
type Client struct {
	Endpoint string

	// TargetLang is used when Translate is called with an empty language.
	// Defaults to PT-BR.
	TargetLang string

	// MaxAttempts bounds the number of requests per call. Defaults to 3.
	MaxAttempts int

	// BaseDelay is the wait after the first failure; it doubles on every
	// further failure. Defaults to 300ms.
	BaseDelay time.Duration

	HTTPClient *http.Client

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Translate returns text translated into targetLang.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("translate: empty text: %w", internalerr.ErrInvalidInput)
	}
	if c.Endpoint == "" {
		return Result{}, fmt.Errorf("translate: endpoint not configured: %w", internalerr.ErrInvalidConfig)
	}
	if targetLang == "" {
		targetLang = c.TargetLang
	}
	if targetLang == "" {
		targetLang = DefaultTargetLang
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	delay := c.BaseDelay
	if delay <= 0 {
		delay = DefaultBaseDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		res, err := c.send(ctx, text, targetLang)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, internalerr.ErrRetryable) || attempt == attempts-1 {
			break
		}
		slog.Warn("translate request failed, retrying",
			"attempt", attempt+1,
			"max_attempts", attempts,
			"backoff", delay,
			"error", err,
		)
		if err := c.wait(ctx, delay); err != nil {
			return Result{}, err
		}
		delay *= 2
	}
	return Result{}, fmt.Errorf("translate: %w", lastErr)
}

func (c *Client) send(ctx context.Context, text, targetLang string) (Result, error) {
	body, err := json.Marshal(request{Text: text, TargetLang: targetLang})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %v", internalerr.ErrRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, &StatusError{Service: "translate", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return res, nil
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
