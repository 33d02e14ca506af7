// ABOUTME: Sync client holding the working copy of the patient document.
// ABOUTME: Loads once (migrating the legacy cache), applies mutations, and debounce-pushes to the remote.
package syncclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/models"
)

// Status is the client's lifecycle state.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusSaving
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusSaving:
		return "saving"
	default:
		return "loading"
	}
}

const (
	DefaultDebounce   = 1000 * time.Millisecond
	DefaultSavingHold = 500 * time.Millisecond
)

var (
	// ErrNotReady is returned by Apply before Load has completed.
	ErrNotReady = errors.New("sync client not ready")
	// ErrClosed is returned by Apply after Close.
	ErrClosed = errors.New("sync client closed")
)

// Client keeps one in-memory document in step with a Remote.
type Client struct {
	remote     Remote
	legacy     *LegacyCache
	logger     zerolog.Logger
	savingHold time.Duration
	debounce   *debouncer

	loadMu sync.Mutex
	pushMu sync.Mutex

	mu         sync.Mutex
	state      models.PatientState
	status     Status
	loaded     bool
	closed     bool
	inFlight   int
	lastPushOK bool
	holdTimer  *time.Timer
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	debounce   time.Duration
	savingHold time.Duration
	legacy     *LegacyCache
}

// WithDebounce sets the quiet period before a push.
func WithDebounce(d time.Duration) Option {
	return func(c *clientConfig) { c.debounce = d }
}

// WithSavingHold sets how long the status stays Saving after a push.
func WithSavingHold(d time.Duration) Option {
	return func(c *clientConfig) { c.savingHold = d }
}

// WithLegacy enables the one-time legacy cache migration during Load.
func WithLegacy(l *LegacyCache) Option {
	return func(c *clientConfig) { c.legacy = l }
}

// New creates a client in the Loading state.
func New(remote Remote, logger zerolog.Logger, opts ...Option) *Client {
	cfg := clientConfig{debounce: DefaultDebounce, savingHold: DefaultSavingHold}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		remote:     remote,
		legacy:     cfg.legacy,
		logger:     logger,
		savingHold: cfg.savingHold,
		state:      models.DefaultState(),
		status:     StatusLoading,
		lastPushOK: true,
	}
	c.debounce = newDebouncer(cfg.debounce, func() {
		_ = c.push(context.Background())
	})
	return c
}

// Load fetches the document once and moves the client to Ready. Later calls
// return the current working copy. Load never schedules a push.
func (c *Client) Load(ctx context.Context) models.PatientState {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	if c.loaded {
		doc := c.state.Clone()
		c.mu.Unlock()
		return doc
	}
	c.mu.Unlock()

	doc, err := c.remote.Fetch(ctx)
	checkLegacy := false
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Msg("remote unavailable, starting from default document")
		doc = models.DefaultState()
		checkLegacy = true
	case doc.IsEmpty():
		checkLegacy = true
	}

	if checkLegacy && c.legacy != nil {
		if migrated, ok := c.migrateLegacy(ctx); ok {
			doc = migrated
		}
	}

	c.mu.Lock()
	c.state = doc
	c.loaded = true
	c.status = StatusReady
	out := c.state.Clone()
	c.mu.Unlock()

	c.logger.Debug().Int("medications", len(out.Medications)).Msg("document loaded")
	return out
}

// migrateLegacy adopts the legacy document. It is pushed to the remote and
// deleted locally only after the push succeeds.
func (c *Client) migrateLegacy(ctx context.Context) (models.PatientState, bool) {
	doc, ok, err := c.legacy.Load()
	if err != nil {
		c.logger.Warn().Err(err).Msg("legacy cache unreadable")
		return models.PatientState{}, false
	}
	if !ok {
		return models.PatientState{}, false
	}

	c.logger.Info().Int("medications", len(doc.Medications)).Msg("migrating legacy document")
	if err := c.remote.Push(ctx, doc); err != nil {
		c.logger.Warn().Err(err).Msg("legacy document push failed, keeping local copy")
		c.mu.Lock()
		c.lastPushOK = false
		c.mu.Unlock()
		return doc, true
	}

	c.mu.Lock()
	c.lastPushOK = true
	c.mu.Unlock()
	if err := c.legacy.Remove(); err != nil {
		c.logger.Warn().Err(err).Msg("legacy cache not removed")
	}
	return doc, true
}

// Apply runs mutation on the working copy and schedules a push. An invalid
// mutation leaves the document untouched.
func (c *Client) Apply(mutation models.Mutation) (models.PatientState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return models.PatientState{}, ErrClosed
	}
	if !c.loaded {
		return models.PatientState{}, ErrNotReady
	}

	next, err := mutation(c.state)
	if err != nil {
		return models.PatientState{}, err
	}
	c.state = next
	c.debounce.Trigger()
	return next.Clone(), nil
}

// State returns a copy of the working document.
func (c *Client) State() models.PatientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Status returns the lifecycle state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastPushOK reports whether the most recent push succeeded. It is true
// before any push.
func (c *Client) LastPushOK() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPushOK
}

// Pending reports whether a push is scheduled.
func (c *Client) Pending() bool {
	return c.debounce.Pending()
}

// push sends a snapshot of the state at call time. Pushes never overlap.
func (c *Client) push(ctx context.Context) error {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()

	c.mu.Lock()
	snapshot := c.state.Clone()
	c.inFlight++
	c.status = StatusSaving
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	c.mu.Unlock()

	err := c.remote.Push(ctx, snapshot)
	if err != nil {
		c.logger.Warn().Err(err).Msg("push failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	c.lastPushOK = err == nil
	if c.savingHold <= 0 {
		c.status = StatusReady
	} else {
		c.holdTimer = time.AfterFunc(c.savingHold, c.endHold)
	}
	return err
}

func (c *Client) endHold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == 0 && c.status == StatusSaving {
		c.status = StatusReady
	}
	c.holdTimer = nil
}

// Flush pushes immediately if a push was scheduled. It returns the push
// error, if any; nothing is pushed when there were no pending changes.
func (c *Client) Flush(ctx context.Context) error {
	if !c.debounce.Cancel() {
		return nil
	}
	return c.push(ctx)
}

// Close flushes pending changes and rejects further mutations.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	err := c.Flush(ctx)

	c.mu.Lock()
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	if c.loaded {
		c.status = StatusReady
	}
	c.mu.Unlock()
	return err
}
