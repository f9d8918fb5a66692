package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yideshare/internal/domain"
)

var (
	ErrPersonNotFound = errors.New("person not found in directory")
	ErrNotConfigured  = errors.New("directory API key not configured")
)

// Lookup resolves optional profile enrichment for a netid. Implementations
// must treat every failure as non-fatal: authentication proceeds on netid
// alone when the directory is unavailable.
type Lookup interface {
	PersonByNetID(ctx context.Context, netid string) (*domain.Profile, error)
}

// YaliesClient queries the Yalies directory API.
type YaliesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewYaliesClient creates a Yalies API client.
func NewYaliesClient(baseURL, apiKey string) *YaliesClient {
	return &YaliesClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type peopleRequest struct {
	Query    string            `json:"query"`
	Filters  map[string]string `json:"filters"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type person struct {
	NetID     string `json:"netid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	College   string `json:"college"`
	Year      string `json:"year"`
	Major     string `json:"major"`
	Image     string `json:"image"`
}

type peopleResponse struct {
	People []person `json:"people"`
}

// PersonByNetID queries the directory for a single person.
func (c *YaliesClient) PersonByNetID(ctx context.Context, netid string) (*domain.Profile, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqBody, err := json.Marshal(peopleRequest{
		Query:    netid,
		Filters:  map[string]string{"netid": netid},
		Page:     0,
		PageSize: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/people", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var people peopleResponse
	if err := json.NewDecoder(resp.Body).Decode(&people); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, p := range people.People {
		if p.NetID == netid {
			return &domain.Profile{
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Email:     p.Email,
				College:   p.College,
				Year:      p.Year,
				Major:     p.Major,
				Image:     p.Image,
			}, nil
		}
	}

	return nil, ErrPersonNotFound
}
