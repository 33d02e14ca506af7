// ABOUTME: Charm KV client wrapper for the legacy on-device patient document.
// ABOUTME: Provides thread-safe initialization, raw key access, and pulling the cloud copy.
package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DBName is the Charm KV database older clients wrote to.
	DBName = "health"

	defaultHost = "charm.2389.dev"
	hostEnv     = "CHARM_HOST"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

type Client struct {
	kv *kv.KV
	mu sync.RWMutex
}

// resolveHost returns the Charm server to use: CHARM_HOST when set,
// otherwise the default host.
func resolveHost() string {
	if h := os.Getenv(hostEnv); h != "" {
		return h
	}
	return defaultHost
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		// Set server before opening KV
		if err := os.Setenv(hostEnv, resolveHost()); err != nil {
			clientErr = err
			return
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = fmt.Errorf("open charm kv: %w", err)
			return
		}

		globalClient = &Client{kv: db}
	})

	return globalClient, clientErr
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud. It is a no-op in read-only
// mode.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// Get returns the raw value for key. A missing key surfaces the underlying
// badger.ErrKeyNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Get(key)
}

// Delete removes key and syncs the deletion to Charm Cloud.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process")
	}

	if err := c.kv.Delete(key); err != nil {
		return err
	}
	return c.kv.Sync()
}
