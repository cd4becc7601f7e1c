package scraper

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

const (
	UserAgent = "changelog-relay/1.0 (github.com/pfrederiksen/changelog-relay)"
	Timeout   = 30 * time.Second

	maxBodySize = 10 << 20
)

// FetchError is returned when the changelog payload cannot be retrieved
type FetchError struct {
	URL        string
	StatusCode int // Set when the server answered with a non-2xx status
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// envelope is the part of the page payload we care about
type envelope struct {
	PageProps struct {
		Content *string `json:"content"`
	} `json:"pageProps"`
}

// Scraper handles fetching and parsing the changelog page
type Scraper struct {
	client *http.Client
	url    string
}

// New creates a new Scraper for url. Certificate verification is on unless
// insecureSkipVerify is set.
func New(url string, insecureSkipVerify bool) *Scraper {
	client := &http.Client{
		Timeout: Timeout,
	}
	if insecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-out
		client.Transport = transport
	}

	return &Scraper{
		client: client,
		url:    url,
	}
}

// URL returns the changelog URL being scraped
func (s *Scraper) URL() string {
	return s.url
}

// FetchContent retrieves the raw changelog HTML from the page payload
func (s *Scraper) FetchContent(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", &FetchError{URL: s.url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: s.url, StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&env); err != nil {
		return "", &FetchError{URL: s.url, Err: fmt.Errorf("decoding payload: %w", err)}
	}

	if env.PageProps.Content == nil {
		return "", &FetchError{URL: s.url, Err: fmt.Errorf("payload has no pageProps.content")}
	}

	return *env.PageProps.Content, nil
}

// FetchUpdates fetches the changelog and parses it into updates
func (s *Scraper) FetchUpdates(ctx context.Context) ([]*changelog.Update, error) {
	content, err := s.FetchContent(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(content), nil
}
