// ABOUTME: Wires the document client, legacy cache, and side-effect resolver for commands.
// ABOUTME: Commands open a session, work on the document, and close it to flush changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/harperreed/medtrack/internal/cache"
	"github.com/harperreed/medtrack/internal/charm"
	"github.com/harperreed/medtrack/internal/logging"
	"github.com/harperreed/medtrack/internal/resolver"
	"github.com/harperreed/medtrack/internal/storage"
	"github.com/harperreed/medtrack/internal/syncclient"
)

// session holds the components one command invocation works with.
type session struct {
	proxy   *syncclient.HTTPRemote
	client  *syncclient.Client
	closers []func() error
}

// openRemote returns the document remote: the server over HTTP, or the
// local data file with --local.
func openRemote() (syncclient.Remote, *syncclient.HTTPRemote, error) {
	if localMode {
		store, err := storage.NewFileStore(cfg.DataFile(), logging.Component(logger, "store"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return syncclient.NewLocalRemote(store), nil, nil
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil, fmt.Errorf("api_key is required to reach %s (set MEDTRACK_API_KEY or use --local)", cfg.ServerURL)
	}
	remote := syncclient.NewHTTPRemote(cfg.ServerURL, cfg.APIKey, cfg.HTTPTimeout, logging.Component(logger, "remote"))
	return remote, remote, nil
}

// serverProxy returns the server's side-effect endpoint, or nil when running
// locally or without credentials.
func serverProxy() *syncclient.HTTPRemote {
	if localMode || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return syncclient.NewHTTPRemote(cfg.ServerURL, cfg.APIKey, cfg.HTTPTimeout, logging.Component(logger, "remote"))
}

// openLegacy opens the configured legacy cache. A missing Badger directory
// means there is nothing to migrate.
func openLegacy() (*syncclient.LegacyCache, func() error, error) {
	legacyLogger := logging.Component(logger, "legacy")

	switch cfg.LegacyBackend {
	case "badger":
		dir := cfg.GetLegacyDir()
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		kv, err := syncclient.OpenBadgerKV(dir)
		if err != nil {
			return nil, nil, err
		}
		return syncclient.NewLegacyCache(kv, legacyLogger), kv.Close, nil
	case "charm":
		client, err := charm.InitClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize charm client: %w", err)
		}
		return syncclient.NewLegacyCache(client, legacyLogger), client.Close, nil
	}
	return nil, nil, nil
}

// openSession builds the sync client and loads the document.
func openSession(ctx context.Context) (*session, error) {
	remote, proxy, err := openRemote()
	if err != nil {
		return nil, err
	}
	s := &session{proxy: proxy}

	opts := []syncclient.Option{
		syncclient.WithDebounce(cfg.Debounce),
		syncclient.WithSavingHold(cfg.SavingHold),
	}
	legacy, closeLegacy, err := openLegacy()
	if err != nil {
		logger.Warn().Err(err).Msg("legacy cache unavailable, skipping migration")
	} else if legacy != nil {
		opts = append(opts, syncclient.WithLegacy(legacy))
		s.closers = append(s.closers, closeLegacy)
	}

	s.client = syncclient.New(remote, logging.Component(logger, "sync"), opts...)
	s.client.Load(ctx)
	return s, nil
}

// resolver builds the side-effect pipeline. Through a server, the server's
// endpoint is asked first.
func (s *session) resolver() (*resolver.Resolver, error) {
	var opts []resolver.Option
	if s.proxy != nil {
		opts = append(opts, resolver.WithProxy(s.proxy))
	}
	store, err := openCache()
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, store.Close)
	return newResolver(store, opts...), nil
}

// openCache opens the configured lookup cache.
func openCache() (cache.Store, error) {
	store, err := cache.Open(cache.Options{
		Backend:   cfg.CacheBackend,
		DataDir:   cfg.GetDataDir(),
		RedisAddr: cfg.RedisAddr,
		TTL:       cfg.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup cache: %w", err)
	}
	return store, nil
}

// newResolver builds the live lookup tiers behind store.
func newResolver(store cache.Store, opts ...resolver.Option) *resolver.Resolver {
	fda := resolver.NewFDAClient(cfg.FDABaseURL, cfg.HTTPTimeout, logging.Component(logger, "fda"))
	searcher := resolver.NewCachedSearcher(fda, store, logging.Component(logger, "cache"))
	return resolver.New(searcher, logging.Component(logger, "resolver"), opts...)
}

// close flushes pending changes and releases resources. A failed push is
// reported so the user knows the change did not reach the server.
func (s *session) close(ctx context.Context) error {
	err := s.client.Close(ctx)
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil {
			logger.Warn().Err(cerr).Msg("close failed")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return nil
}

// withSession opens a session, runs fn, and closes the session.
func withSession(ctx context.Context, fn func(s *session) error) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	runErr := fn(s)
	closeErr := s.close(ctx)
	if runErr != nil {
		return runErr
	}
	return closeErr
}
