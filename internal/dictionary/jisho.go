package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

const DefaultJishoURL = "https://jisho.org/api/v1/search/words"

// Jisho looks words up on the jisho.org search API. Requests are spaced by
// at least the configured delay.
type Jisho struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	retryWait  time.Duration

	mu   sync.Mutex
	last time.Time
}

var _ Provider = (*Jisho)(nil)

type JishoOption func(*Jisho)

func WithJishoURL(baseURL string) JishoOption {
	return func(j *Jisho) {
		if baseURL != "" {
			j.baseURL = baseURL
		}
	}
}

func WithJishoDelay(delay time.Duration) JishoOption {
	return func(j *Jisho) {
		j.delay = delay
	}
}

func WithHTTPClient(client *http.Client) JishoOption {
	return func(j *Jisho) {
		if client != nil {
			j.httpClient = client
		}
	}
}

func NewJisho(opts ...JishoOption) *Jisho {
	j := &Jisho{
		baseURL:    DefaultJishoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		delay:      500 * time.Millisecond,
		retryWait:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type jishoResponse struct {
	Data []struct {
		Senses []struct {
			EnglishDefinitions []string `json:"english_definitions"`
		} `json:"senses"`
	} `json:"data"`
}

func (j *Jisho) Name() string {
	return "Jisho"
}

// Lookup returns the senses of the first search result.
func (j *Jisho) Lookup(ctx context.Context, word string) ([]string, error) {
	if err := j.wait(ctx); err != nil {
		return nil, err
	}

	reqURL := j.baseURL + "?" + url.Values{"keyword": {word}}.Encode()
	log.Debug("Jisho request for %s", word)

	resp, err := j.doWithRetry(ctx, reqURL, word)
	if err != nil {
		return nil, fmt.Errorf("jisho: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jisho: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jisho: read body: %w", err)
	}
	var decoded jishoResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("jisho: decode json: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, nil
	}

	senses := make([]string, 0)
	for _, s := range decoded.Data[0].Senses {
		if joined := joinGlosses(s.EnglishDefinitions); joined != "" {
			senses = append(senses, joined)
		}
	}
	return senses, nil
}

// wait blocks until delay has passed since the previous request.
func (j *Jisho) wait(ctx context.Context) error {
	j.mu.Lock()
	next := j.last.Add(j.delay)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	j.last = next
	j.mu.Unlock()

	d := time.Until(next)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// doWithRetry retries once on a network error or a 5xx status.
func (j *Jisho) doWithRetry(ctx context.Context, reqURL, word string) (*http.Response, error) {
	resp, err := j.get(ctx, reqURL)
	shouldRetry := err != nil || resp.StatusCode >= 500
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	log.Warn("Retrying Jisho lookup of %s after %s", word, reason)

	timer := time.NewTimer(j.retryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return j.get(ctx, reqURL)
}

func (j *Jisho) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return j.httpClient.Do(req)
}
