package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	gistFilename = "posted_updates.json"
	gistTimeout  = 15 * time.Second
)

// gistAPIURL is a variable so tests can point the store at a local server
var gistAPIURL = "https://api.github.com/gists"

// GistStore keeps the posted keys in a file of a GitHub Gist. It lets the
// relay run from ephemeral environments such as scheduled CI jobs.
type GistStore struct {
	gistID      string
	githubToken string
	httpClient  *http.Client
}

// NewGistStore creates a new Gist-backed store
func NewGistStore(gistID, githubToken string) (*GistStore, error) {
	if gistID == "" {
		return nil, fmt.Errorf("gist ID is required")
	}
	if githubToken == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
	}, nil
}

// Path describes where the state lives, for logging
func (g *GistStore) Path() string {
	return fmt.Sprintf("gist:%s/%s", g.gistID, gistFilename)
}

// Load retrieves the posted keys from the Gist. A missing file yields an empty list.
func (g *GistStore) Load(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/%s", gistAPIURL, g.gistID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, g.wrap("load", fmt.Errorf("creating request: %w", err))
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, g.wrap("load", fmt.Errorf("fetching gist: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Don't include response body in error to prevent information leakage
		return nil, g.wrap("load", fmt.Errorf("GitHub API error (status %d)", resp.StatusCode))
	}

	var gistResp struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&gistResp); err != nil {
		return nil, g.wrap("load", fmt.Errorf("decoding gist response: %w", err))
	}

	file, exists := gistResp.Files[gistFilename]
	if !exists || file.Content == "" {
		return []string{}, nil
	}

	var dates []string
	if err := json.Unmarshal([]byte(file.Content), &dates); err != nil {
		return nil, g.wrap("load", fmt.Errorf("parsing state: %w", err))
	}
	if dates == nil {
		dates = []string{}
	}

	return dates, nil
}

// Save replaces the Gist file with dates
func (g *GistStore) Save(ctx context.Context, dates []string) error {
	if dates == nil {
		dates = []string{}
	}

	content, err := json.MarshalIndent(dates, "", "  ")
	if err != nil {
		return g.wrap("save", fmt.Errorf("encoding state: %w", err))
	}

	payload := map[string]interface{}{
		"files": map[string]interface{}{
			gistFilename: map[string]string{
				"content": string(content),
			},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return g.wrap("save", fmt.Errorf("marshaling payload: %w", err))
	}

	url := fmt.Sprintf("%s/%s", gistAPIURL, g.gistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return g.wrap("save", fmt.Errorf("creating request: %w", err))
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.wrap("save", fmt.Errorf("updating gist: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.wrap("save", fmt.Errorf("GitHub API error (status %d)", resp.StatusCode))
	}

	return nil
}

func (g *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

func (g *GistStore) wrap(op string, err error) error {
	return &Error{Op: op, Path: g.Path(), Err: err}
}
