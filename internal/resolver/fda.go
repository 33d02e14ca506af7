// ABOUTME: openFDA adverse-event client used for live side-effect lookups.
// ABOUTME: Counts the most reported reaction terms for a medicinal product.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultFDABaseURL is the public openFDA API.
const DefaultFDABaseURL = "https://api.fda.gov"

// fdaCountLimit is how many terms are requested before exclusion filtering.
const fdaCountLimit = 40

// ErrNoResults is returned when the service has no reports for a name.
var ErrNoResults = errors.New("no adverse event results")

type fdaCountResponse struct {
	Results []struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	} `json:"results"`
}

// FDAClient queries the openFDA drug event endpoint.
type FDAClient struct {
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewFDAClient creates a client for baseURL. Requests are never retried.
func NewFDAClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *FDAClient {
	if baseURL == "" {
		baseURL = DefaultFDABaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &FDAClient{httpClient: client, logger: logger}
}

// TopReactions returns reaction terms for medication, most reported first.
func (c *FDAClient) TopReactions(ctx context.Context, medication string) ([]string, error) {
	search := fmt.Sprintf(`patient.drug.medicinalproduct:"%s"`, strings.ReplaceAll(medication, `"`, ""))

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search": search,
			"count":  "patient.reaction.reactionmeddrapt.exact",
			"limit":  fmt.Sprintf("%d", fdaCountLimit),
		}).
		Get("/drug/event.json")
	if err != nil {
		return nil, fmt.Errorf("call openFDA: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openFDA returned %d", resp.StatusCode())
	}

	var body fdaCountResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode openFDA response: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	terms := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		terms = append(terms, r.Term)
	}

	c.logger.Debug().
		Str("medication", medication).
		Int("terms", len(terms)).
		Msg("openFDA lookup")

	return terms, nil
}
