// Package gateway holds the authentication state of one request.
//
// A Gateway is in exactly one of two states, anonymous or authenticated as a
// single user, and moves between them only through Login, Logout and
// Attempt. Collaborator failures never surface to callers: every operation
// reports a plain success flag or an absent user, and the cause is logged.
package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"auth-gateway/internal/auth/credentials"
	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/session"
)

// Guard is the full set of authentication operations available to
// application code.
type Guard interface {
	User(ctx context.Context) (*user.User, bool)
	Check(ctx context.Context) bool
	Guest(ctx context.Context) bool
	Attempt(ctx context.Context, c credentials.Credentials) bool
	Login(ctx context.Context, u *user.User) bool
	Logout(ctx context.Context) bool
}

var _ Guard = (*Gateway)(nil)

// Options configure a Gateway.
type Options struct {
	Users    user.Provider
	Sessions session.Store
	Marker   session.Marker

	// TTL is the lifetime of sessions created by Login.
	TTL time.Duration

	// Device describes the client, recorded on new sessions.
	Device string

	Clock func() time.Time
}

// Gateway tracks who, if anyone, is signed in for the current request.
type Gateway struct {
	users    user.Provider
	sessions session.Store
	marker   session.Marker
	ttl      time.Duration
	device   string
	clock    func() time.Time

	mu        sync.Mutex
	resolved  bool
	current   *user.User
	sessionID string
}

func New(opts Options) *Gateway {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	return &Gateway{
		users:    opts.Users,
		sessions: opts.Sessions,
		marker:   opts.Marker,
		ttl:      opts.TTL,
		device:   opts.Device,
		clock:    opts.Clock,
	}
}

// User returns the signed in user, or false when the request is anonymous.
func (g *Gateway) User(ctx context.Context) (*user.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resolve(ctx)
	return g.current, g.current != nil
}

func (g *Gateway) Check(ctx context.Context) bool {
	_, ok := g.User(ctx)
	return ok
}

func (g *Gateway) Guest(ctx context.Context) bool {
	return !g.Check(ctx)
}

// Attempt looks up the user identified by c and verifies its secret. On a
// match the user is logged in. A miss and a wrong secret are
// indistinguishable to the caller, in result and in cost: the secret is
// always checked, against a nil user on a miss.
func (g *Gateway) Attempt(ctx context.Context, c credentials.Credentials) bool {
	u, err := g.users.RetrieveByCredentials(ctx, c)
	if err != nil {
		// a miss still pays for a secret comparison
		g.users.ValidateCredentials(nil, c)

		if !errors.Is(err, user.ErrNotFound) {
			logger.Error("auth attempt lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		return false
	}

	if !g.users.ValidateCredentials(u, c) {
		logger.Info("auth attempt rejected", map[string]any{
			"user_id": u.ID,
		})
		return false
	}

	return g.Login(ctx, u)
}

// Login starts a session for u, which the caller has already authenticated.
// Any session already held by the request is replaced.
func (g *Gateway) Login(ctx context.Context, u *user.User) bool {
	if !u.Active() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	sessionID, err := session.GenerateID()
	if err != nil {
		logger.Error("session id generation failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}

	now := g.clock()
	sess := session.Session{
		SessionID: sessionID,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
		Device:    g.device,
	}

	if err := g.sessions.Create(ctx, sess); err != nil {
		logger.Error("session create failed", map[string]any{
			"user_id": u.ID,
			"error":   err.Error(),
		})
		return false
	}

	// rotate: the previous id must not remain usable
	previous := g.sessionID
	if !g.resolved {
		previous, _ = g.marker.Get()
	}
	if previous != "" {
		g.forget(ctx, previous)
	}

	g.marker.Set(sessionID, sess.ExpiresAt)

	if err := g.users.MarkLoggedIn(ctx, u.ID); err != nil {
		logger.Warn("mark logged in failed", map[string]any{
			"user_id": u.ID,
			"error":   err.Error(),
		})
	}

	g.resolved = true
	g.current = u
	g.sessionID = sessionID

	logger.Info("login", map[string]any{
		"user_id": u.ID,
		"device":  g.device,
	})

	return true
}

// Logout ends the current session. It always succeeds, including when the
// request is already anonymous.
func (g *Gateway) Logout(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resolve(ctx)

	if g.sessionID != "" {
		g.forget(ctx, g.sessionID)
	}

	g.marker.Clear()

	if g.current != nil {
		logger.Info("logout", map[string]any{
			"user_id": g.current.ID,
		})
	}

	g.current = nil
	g.sessionID = ""
	return true
}

// resolve loads the session named by the marker the first time state is
// needed. Callers hold g.mu.
func (g *Gateway) resolve(ctx context.Context) {
	if g.resolved {
		return
	}
	g.resolved = true

	sessionID, ok := g.marker.Get()
	if !ok {
		return
	}
	// remembered even if the session is gone, so Logout can clear it
	g.sessionID = sessionID

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Error("session load failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if sess == nil {
		return
	}

	if sess.Expired(g.clock()) {
		g.forget(ctx, sessionID)
		g.marker.Clear()
		g.sessionID = ""
		return
	}

	u, err := g.users.RetrieveByID(ctx, sess.UserID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		g.forget(ctx, sessionID)
		return
	case err != nil:
		logger.Error("session user load failed", map[string]any{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
		return
	case !u.Active():
		return
	}

	g.current = u
}

// forget deletes a stored session, best effort.
func (g *Gateway) forget(ctx context.Context, sessionID string) {
	if err := g.sessions.Delete(ctx, sessionID); err != nil {
		logger.Warn("session delete failed", map[string]any{
			"error": err.Error(),
		})
	}
}
