// Package session maintains a single source of truth for "who is signed in
// right now". The backend session can change outside this process's control
// flow (token refresh elsewhere, expiry, recovery links), so the cache
// resynchronizes on explicit staleness signals in addition to the backend's
// own auth-state notifications.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
	"github.com/tftboard/tftboard/internal/store"
)

// Signal names one staleness trigger. Which signals matter is an operational
// tuning decision; the set is supplied by the caller, not hardcoded here.
type Signal string

const (
	SignalFocus    Signal = "focus"
	SignalVisible  Signal = "visible"
	SignalStorage  Signal = "storage"
	SignalFallback Signal = "fallback"
	SignalInitial  Signal = "initial"
)

// State is the cache's published view. Loading is a genuine third state:
// while it is set the identity is indeterminate and must not be treated as
// either authenticated or anonymous.
type State struct {
	Session          *domain.Session
	Loading          bool
	PasswordRecovery bool
}

// Principal returns the settled identity, or nil when anonymous or loading.
func (s State) Principal() *domain.Principal {
	if s.Session == nil {
		return nil
	}
	return &s.Session.Principal
}

type Options struct {
	// Signals is the staleness channel; each received signal triggers a
	// resync. Nil disables signal-driven resync.
	Signals <-chan Signal
	// FallbackDelay schedules a one-shot resync after initialization in case
	// the initial read was slow. Zero uses the default, negative disables.
	FallbackDelay time.Duration
	// Timeout bounds every backend call. Zero uses the default.
	Timeout time.Duration
}

const (
	defaultFallbackDelay = 400 * time.Millisecond
	defaultTimeout       = 8 * time.Second
)

// Cache holds the current authenticated identity and token pair.
type Cache struct {
	client store.Client

	mu      sync.Mutex
	state   State
	changed chan struct{}

	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup

	signals       <-chan Signal
	fallbackDelay time.Duration
	timeout       time.Duration
}

// New builds a cache in the loading state. Call Initialize to start it.
func New(client store.Client, opts Options) *Cache {
	fallback := opts.FallbackDelay
	if fallback == 0 {
		fallback = defaultFallbackDelay
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Cache{
		client:        client,
		state:         State{Loading: true},
		changed:       make(chan struct{}),
		done:          make(chan struct{}),
		signals:       opts.Signals,
		fallbackDelay: fallback,
		timeout:       timeout,
	}
}

// Initialize attaches the auth-state subscription, issues the initial session
// read and starts the staleness loop. It never blocks on the network; the
// initial read settles asynchronously. When the backend is not configured the
// cache settles to anonymous immediately.
func (c *Cache) Initialize() {
	unsubscribe, err := c.client.OnAuthStateChange(c.handleAuthEvent)
	if err != nil {
		// Not configured (or subscription impossible): settle anonymous so
		// consumers always reach a determinate state.
		c.apply(func(s *State) {
			s.Session = nil
			s.Loading = false
			s.PasswordRecovery = false
		})
		return
	}
	c.unsubscribe = unsubscribe

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Resync(SignalInitial)
	}()

	if c.fallbackDelay > 0 {
		c.wg.Add(1)
		go c.fallbackLoop()
	}
	if c.signals != nil {
		c.wg.Add(1)
		go c.signalLoop()
	}
}

func (c *Cache) fallbackLoop() {
	defer c.wg.Done()
	timer := time.NewTimer(c.fallbackDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		if c.Snapshot().Session == nil {
			c.Resync(SignalFallback)
		}
	case <-c.done:
	}
}

func (c *Cache) signalLoop() {
	defer c.wg.Done()
	for {
		select {
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			c.Resync(sig)
		case <-c.done:
			return
		}
	}
}

// Resync re-reads the current session and replaces the cached state. It is
// idempotent: repeated calls without an intervening backend change settle to
// the same principal. A failed read clears the loading and recovery flags but
// keeps the previously settled session rather than flapping to anonymous.
func (c *Cache) Resync(reason Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	sess, err := c.client.CurrentSession(ctx)
	if c.closed() {
		return
	}
	switch {
	case err == nil:
		logger.Log.Debug("session resync", "reason", reason, "signed_in", sess != nil)
		c.apply(func(s *State) {
			s.Session = sess
			s.Loading = false
			s.PasswordRecovery = false
		})
		if sess != nil {
			c.ensureProfile(sess)
		}
	case internal_errors.IsNotFound(err):
		c.apply(func(s *State) {
			s.Session = nil
			s.Loading = false
			s.PasswordRecovery = false
		})
	default:
		logger.Log.Debug("session resync failed", "reason", reason, "error", err)
		c.apply(func(s *State) {
			s.Loading = false
			s.PasswordRecovery = false
		})
	}
}

// handleAuthEvent replaces the session wholesale on every backend
// notification. The recovery flag is set iff the event kind indicates a
// password-recovery flow was just entered.
func (c *Cache) handleAuthEvent(ev domain.AuthEvent) {
	if c.closed() {
		return
	}
	c.apply(func(s *State) {
		s.Session = ev.Session
		s.Loading = false
		s.PasswordRecovery = ev.Kind == domain.AuthPasswordRecovery
	})
	if ev.Session != nil {
		c.ensureProfile(ev.Session)
	}
}

// ensureProfile upserts the principal's profile snapshot. The profiles table
// is optional infrastructure: failures are swallowed.
func (c *Cache) ensureProfile(sess *domain.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	p := sess.Principal
	err := c.client.UpsertProfile(ctx, domain.Profile{
		Id:          p.Id,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
		CreatedAt:   p.CreatedAt,
	})
	if err != nil {
		logger.Log.Debug("profile upsert skipped", "error", err)
	}
}

// ResolvePasswordRecovery clears the recovery flag once the user completed a
// password update while in recovery mode.
func (c *Cache) ResolvePasswordRecovery() {
	c.apply(func(s *State) {
		s.PasswordRecovery = false
	})
}

// Snapshot returns the current state.
func (c *Cache) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changed returns a channel closed on the next state replacement.
func (c *Cache) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func (c *Cache) apply(mutate func(*State)) {
	c.mu.Lock()
	mutate(&c.state)
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

func (c *Cache) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close detaches the auth subscription and stops the staleness loops. No
// state is applied after Close returns.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
	})
	c.wg.Wait()
}
