// ABOUTME: HTTP remote for the sync client, talking to the document server with resty.
// ABOUTME: Also serves as the resolver's proxy source through the side-effect endpoint.
package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/resolver"
	"github.com/harperreed/medtrack/internal/server"
	"github.com/harperreed/medtrack/internal/storage"
)

// Remote is the server-side copy of the document.
type Remote interface {
	Fetch(ctx context.Context) (models.PatientState, error)
	Push(ctx context.Context, doc models.PatientState) error
}

// HTTPRemote implements Remote and resolver.Source against the document server.
type HTTPRemote struct {
	httpClient *resty.Client
	logger     zerolog.Logger
}

var (
	_ Remote          = (*HTTPRemote)(nil)
	_ resolver.Source = (*HTTPRemote)(nil)
)

// NewHTTPRemote creates a remote for baseURL authenticating with apiKey.
func NewHTTPRemote(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *HTTPRemote {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader(server.APIKeyHeader, apiKey).
		SetHeader("Accept", "application/json")

	return &HTTPRemote{httpClient: client, logger: logger}
}

// Fetch downloads the stored document.
func (r *HTTPRemote) Fetch(ctx context.Context) (models.PatientState, error) {
	resp, err := r.httpClient.R().
		SetContext(ctx).
		Get("/api/data")
	if err != nil {
		return models.PatientState{}, fmt.Errorf("fetch document: %w", err)
	}
	if resp.IsError() {
		return models.PatientState{}, fmt.Errorf("fetch document: server returned %d", resp.StatusCode())
	}

	doc, err := models.ParseState(resp.Body())
	if err != nil {
		return models.PatientState{}, fmt.Errorf("fetch document: %w", err)
	}
	return doc, nil
}

// Push replaces the stored document with doc.
func (r *HTTPRemote) Push(ctx context.Context, doc models.PatientState) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put("/api/data")
	if err != nil {
		return fmt.Errorf("push document: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push document: server returned %d", resp.StatusCode())
	}
	return nil
}

// Health reads the server's health endpoint.
func (r *HTTPRemote) Health(ctx context.Context) (server.HealthResponse, error) {
	var health server.HealthResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return health, fmt.Errorf("health check: %w", err)
	}
	if resp.IsError() {
		return health, fmt.Errorf("health check: server returned %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &health); err != nil {
		return health, fmt.Errorf("decode health response: %w", err)
	}
	return health, nil
}

// SideEffects asks the server to resolve medication. An empty list means the
// server found nothing and the caller should continue with its own tiers.
func (r *HTTPRemote) SideEffects(ctx context.Context, medication string) ([]models.SideEffectRecord, error) {
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"medication": medication}).
		Post("/api/side-effects")
	if err != nil {
		return nil, fmt.Errorf("side effect proxy: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("side effect proxy: server returned %d", resp.StatusCode())
	}

	var body struct {
		SideEffects []models.SideEffectRecord `json:"sideEffects"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode side effect proxy response: %w", err)
	}
	return body.SideEffects, nil
}

// LocalRemote keeps the document in a local store instead of on a server.
// Used for offline and single-machine setups.
type LocalRemote struct {
	store storage.Repository
}

var _ Remote = (*LocalRemote)(nil)

// NewLocalRemote wraps store.
func NewLocalRemote(store storage.Repository) *LocalRemote {
	return &LocalRemote{store: store}
}

// Fetch never fails; a missing or corrupt file reads as the default document.
func (l *LocalRemote) Fetch(ctx context.Context) (models.PatientState, error) {
	doc, _ := l.store.Read(ctx)
	return doc, nil
}

func (l *LocalRemote) Push(ctx context.Context, doc models.PatientState) error {
	return l.store.Write(ctx, doc)
}
