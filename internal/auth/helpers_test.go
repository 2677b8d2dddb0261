package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdt-ict/portal/internal/shared"
	"github.com/pdt-ict/portal/internal/users"
	_ "github.com/pdt-ict/portal/testing"
)

const testSecret = "test-secret"

type memStore struct {
	mu        sync.Mutex
	byID      map[string]*users.User
	failWith  error
	passwords map[string]string
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]*users.User), passwords: make(map[string]string)}
}

func (m *memStore) Create(ctx context.Context, in users.NewUser) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.byID {
		if u.Email == in.Email {
			return nil, fmt.Errorf("mem: create: %w", shared.ErrConflict)
		}
	}
	now := time.Now().UTC()
	u := &users.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("mem: find by email: %w", shared.ErrNotFound)
}

func (m *memStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("mem: find by id: %w", shared.ErrNotFound)
}

func (m *memStore) UpdatePassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("mem: update password: %w", shared.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) Update(ctx context.Context, id string, fields users.UpdateFields) (*users.User, error) {
	return nil, fmt.Errorf("mem: update: %w", shared.ErrNotFound)
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type recordedReset struct {
	email string
	token string
}

type fakeNotifier struct {
	sent []recordedReset
	err  error
}

func (f *fakeNotifier) NotifyPasswordReset(ctx context.Context, email, token string) error {
	f.sent = append(f.sent, recordedReset{email: email, token: token})
	return f.err
}

type fakeEvents struct {
	counts map[string]int
}

func (f *fakeEvents) RecordAuthEvent(event, outcome string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[event+"/"+outcome]++
}

type fixture struct {
	store    *memStore
	tokens   *TokenService
	notifier *fakeNotifier
	events   *fakeEvents
	service  *Service
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T, cfg ServiceConfig) *fixture {
	t.Helper()
	clock := &testClock{now: time.Now().Truncate(time.Second)}
	tokens, err := NewTokenService(testSecret, WithClock(clock.Now))
	require.NoError(t, err)
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.MinCost
	}
	f := &fixture{
		store:    newMemStore(),
		tokens:   tokens,
		notifier: &fakeNotifier{},
		events:   &fakeEvents{},
		clock:    clock,
	}
	f.service = NewService(f.store, tokens, f.notifier, f.events, nil, cfg)
	return f
}

func (f *fixture) register(t *testing.T, email, password string) *Session {
	t.Helper()
	sess, err := f.service.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return sess
}
