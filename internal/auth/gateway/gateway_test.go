package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auth-gateway/internal/auth/credentials"
	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/session"

	"github.com/shoenig/test/must"
)

// session.MemoryStore checks expiry against the wall clock, so the gateway
// clock stays close to it.
var now = time.Now().UTC().Truncate(time.Second)

func testNow() time.Time {
	return now
}

// fakeUsers is an in-memory user.Provider keyed by email, with plaintext
// secrets.
type fakeUsers struct {
	mu       sync.Mutex
	byID     map[string]*user.User
	secrets  map[string]string
	logins   map[string]int
	fetchErr error

	// validations counts ValidateCredentials calls, nil users included.
	validations int
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{
		byID:    make(map[string]*user.User),
		secrets: make(map[string]string),
		logins:  make(map[string]int),
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.secrets[u.ID] = "secret-" + u.ID
	}
	return f
}

func (f *fakeUsers) RetrieveByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) RetrieveByCredentials(_ context.Context, c credentials.Credentials) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	for _, u := range f.byID {
		if u.Email == c["email"] {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) ValidateCredentials(u *user.User, c credentials.Credentials) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.validations++
	if u == nil {
		return false
	}
	return f.secrets[u.ID] == c.Secret().Unveil()
}

func (f *fakeUsers) MarkLoggedIn(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logins[id]++
	return nil
}

// fakeMarker is a session.Marker held in memory, standing in for a cookie.
type fakeMarker struct {
	value   string
	expires time.Time
	clears  int
}

func (m *fakeMarker) Get() (string, bool) {
	return m.value, m.value != ""
}

func (m *fakeMarker) Set(id string, expires time.Time) {
	m.value = id
	m.expires = expires
}

func (m *fakeMarker) Clear() {
	m.value = ""
	m.clears++
}

// failingStore rejects every write.
type failingStore struct {
	*session.MemoryStore
}

func (failingStore) Create(context.Context, session.Session) error {
	return errors.New("store unavailable")
}

var (
	alice = &user.User{ID: "u-alice", Email: "alice@example.com", Status: user.StatusActive}
	bob   = &user.User{ID: "u-bob", Email: "bob@example.com", Status: user.StatusActive}
	carol = &user.User{ID: "u-carol", Email: "carol@example.com", Status: user.StatusDisabled}
)

type fixture struct {
	users    *fakeUsers
	sessions *session.MemoryStore
	marker   *fakeMarker
	gateway  *Gateway
}

func newFixture() *fixture {
	f := &fixture{
		users:    newFakeUsers(alice, bob, carol),
		sessions: session.NewMemoryStore(),
		marker:   new(fakeMarker),
	}
	f.gateway = f.next()
	return f
}

// next builds a gateway for a later request sharing the same stores and
// client marker.
func (f *fixture) next() *Gateway {
	return New(Options{
		Users:    f.users,
		Sessions: f.sessions,
		Marker:   f.marker,
		TTL:      time.Hour,
		Device:   "Firefox/desktop",
		Clock:    testNow,
	})
}

func TestGateway_fresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	u, ok := f.gateway.User(ctx)
	must.False(t, ok)
	must.Nil(t, u)
	must.False(t, f.gateway.Check(ctx))
	must.True(t, f.gateway.Guest(ctx))
}

func TestGateway_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	must.True(t, f.gateway.Login(ctx, alice))
	must.True(t, f.gateway.Check(ctx))
	must.False(t, f.gateway.Guest(ctx))

	u, ok := f.gateway.User(ctx)
	must.True(t, ok)
	must.True(t, u == alice)

	// the session was persisted and the marker points at it
	sid, ok := f.marker.Get()
	must.True(t, ok)
	sess, err := f.sessions.Get(ctx, sid)
	must.NoError(t, err)
	must.Eq(t, alice.ID, sess.UserID)
	must.Eq(t, "Firefox/desktop", sess.Device)
	must.Eq(t, testNow().Add(time.Hour), sess.ExpiresAt)
	must.Eq(t, sess.ExpiresAt, f.marker.expires)
	must.Eq(t, 1, f.users.logins[alice.ID])
}

func TestGateway_Login_invalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := []struct {
		name string
		user *user.User
	}{
		{"nil user", nil},
		{"empty id", &user.User{Email: "x@example.com", Status: user.StatusActive}},
		{"disabled", carol},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			must.False(t, f.gateway.Login(ctx, tc.user))
			must.False(t, f.gateway.Check(ctx))
			must.Eq(t, 0, f.sessions.Len())
		})
	}
}

func TestGateway_Login_storeFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	must.True(t, f.gateway.Login(ctx, alice))

	g := New(Options{
		Users:    f.users,
		Sessions: failingStore{f.sessions},
		Marker:   f.marker,
		Clock:    testNow,
	})

	must.False(t, g.Login(ctx, bob))

	// still alice
	u, ok := g.User(ctx)
	must.True(t, ok)
	must.Eq(t, alice.ID, u.ID)
}

func TestGateway_Login_replaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	must.True(t, f.gateway.Login(ctx, alice))
	first, _ := f.marker.Get()

	must.True(t, f.gateway.Login(ctx, bob))
	second, _ := f.marker.Get()

	u, ok := f.gateway.User(ctx)
	must.True(t, ok)
	must.True(t, u == bob)

	// the first session id is no longer usable
	must.NotEq(t, first, second)
	old, err := f.sessions.Get(ctx, first)
	must.NoError(t, err)
	must.Nil(t, old)
	must.Eq(t, 1, f.sessions.Len())
}

func TestGateway_Logout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	must.True(t, f.gateway.Login(ctx, alice))
	sid, _ := f.marker.Get()

	must.True(t, f.gateway.Logout(ctx))
	must.False(t, f.gateway.Check(ctx))
	must.Eq(t, 0, f.sessions.Len())

	_, ok := f.marker.Get()
	must.False(t, ok)

	// idempotent
	must.True(t, f.gateway.Logout(ctx))
	must.False(t, f.gateway.Check(ctx))

	stale, err := f.sessions.Get(ctx, sid)
	must.NoError(t, err)
	must.Nil(t, stale)
}

func TestGateway_Logout_anonymous(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	must.True(t, f.gateway.Logout(ctx))
	must.True(t, f.gateway.Logout(ctx))
	must.True(t, f.gateway.Guest(ctx))
	must.Eq(t, 2, f.marker.clears)
}

func TestGateway_Attempt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown identifier", func(t *testing.T) {
		f := newFixture()
		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "nobody@example.com",
			"password": "secret-u-alice",
		})
		must.False(t, ok)
		must.False(t, f.gateway.Check(ctx))
		must.Eq(t, 0, f.sessions.Len())
	})

	t.Run("miss and wrong secret both check the secret", func(t *testing.T) {
		miss := newFixture()
		miss.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "nobody@example.com",
			"password": "guess",
		})

		wrong := newFixture()
		wrong.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "alice@example.com",
			"password": "guess",
		})

		must.Eq(t, 1, miss.users.validations)
		must.Eq(t, wrong.users.validations, miss.users.validations)
	})

	t.Run("wrong secret", func(t *testing.T) {
		f := newFixture()
		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "alice@example.com",
			"password": "guess",
		})
		must.False(t, ok)
		must.False(t, f.gateway.Check(ctx))
		must.Eq(t, 0, f.sessions.Len())
	})

	t.Run("correct secret", func(t *testing.T) {
		f := newFixture()
		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "alice@example.com",
			"password": "secret-u-alice",
		})
		must.True(t, ok)

		u, authed := f.gateway.User(ctx)
		must.True(t, authed)
		must.True(t, u == alice)
	})

	t.Run("disabled user", func(t *testing.T) {
		f := newFixture()
		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "carol@example.com",
			"password": "secret-u-carol",
		})
		must.False(t, ok)
		must.False(t, f.gateway.Check(ctx))
	})

	t.Run("failure keeps existing session", func(t *testing.T) {
		f := newFixture()
		must.True(t, f.gateway.Login(ctx, bob))

		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "alice@example.com",
			"password": "guess",
		})
		must.False(t, ok)

		u, authed := f.gateway.User(ctx)
		must.True(t, authed)
		must.True(t, u == bob)
	})

	t.Run("lookup error", func(t *testing.T) {
		f := newFixture()
		f.users.fetchErr = errors.New("db down")

		ok := f.gateway.Attempt(ctx, credentials.Credentials{
			"email":    "alice@example.com",
			"password": "secret-u-alice",
		})
		must.False(t, ok)
		must.Eq(t, 1, f.users.validations)
	})
}

func TestGateway_resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("later request sees the session", func(t *testing.T) {
		f := newFixture()
		must.True(t, f.gateway.Login(ctx, alice))

		g := f.next()
		u, ok := g.User(ctx)
		must.True(t, ok)
		must.Eq(t, alice.ID, u.ID)
	})

	t.Run("expired session", func(t *testing.T) {
		f := newFixture()
		must.True(t, f.gateway.Login(ctx, alice))

		g := f.next()
		g.clock = func() time.Time { return testNow().Add(2 * time.Hour) }

		must.False(t, g.Check(ctx))
		_, ok := f.marker.Get()
		must.False(t, ok)
	})

	t.Run("unknown session id", func(t *testing.T) {
		f := newFixture()
		f.marker.value = "forged"

		g := f.next()
		must.True(t, g.Guest(ctx))

		// logout still clears the forged marker
		must.True(t, g.Logout(ctx))
		_, ok := f.marker.Get()
		must.False(t, ok)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newFixture()
		ghost := &user.User{ID: "u-ghost", Status: user.StatusActive}
		must.True(t, f.gateway.Login(ctx, ghost))

		g := f.next()
		must.False(t, g.Check(ctx))
		must.Eq(t, 0, f.sessions.Len())
	})

	t.Run("user store error", func(t *testing.T) {
		f := newFixture()
		must.True(t, f.gateway.Login(ctx, alice))
		f.users.fetchErr = errors.New("db down")

		g := f.next()
		must.False(t, g.Check(ctx))

		// the session is kept for when storage recovers
		must.Eq(t, 1, f.sessions.Len())
	})
}

func TestScope_singleInstance(t *testing.T) {
	t.Parallel()

	var builds int
	var mu sync.Mutex

	scope := NewScope(func() *Gateway {
		mu.Lock()
		builds++
		mu.Unlock()
		return New(Options{Marker: new(fakeMarker)})
	})

	const n = 32
	results := make([]*Gateway, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = scope.Gateway()
		}()
	}
	wg.Wait()

	must.Eq(t, 1, builds)
	for _, g := range results {
		must.True(t, g == results[0])
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(context.Background())
	must.False(t, ok)

	f := newFixture()
	scope := NewScope(func() *Gateway { return f.gateway })
	ctx := WithScope(context.Background(), scope)

	g1, ok := FromContext(ctx)
	must.True(t, ok)
	g2, _ := FromContext(ctx)
	must.True(t, g1 == g2)
	must.True(t, g1 == f.gateway)
}
