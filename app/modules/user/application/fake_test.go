package userservice

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake User Repo
// ------------------------

type FakeRepository struct {
	mu    sync.Mutex
	trace []string

	CreateUserFunc       func(ctx context.Context, db bun.IDB, user *userdb.User) error
	GetUserByUserIDFunc  func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error)
	GetUserForUpdateFunc func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error)
	ListUsersFunc        func(ctx context.Context, db bun.IDB) ([]*userdb.User, error)
	UpdateUsernameFunc   func(ctx context.Context, db bun.IDB, userID, username string) error
	UpdateStatsFunc      func(ctx context.Context, db bun.IDB, user *userdb.User) error
	SetAdminFunc         func(ctx context.Context, db bun.IDB, userID string, isAdmin bool) error
	DeleteUserFunc       func(ctx context.Context, db bun.IDB, userID string) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{trace: []string{}}
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) CreateUser(ctx context.Context, db bun.IDB, user *userdb.User) error {
	f.record("CreateUser")
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, db, user)
	}
	return nil
}

func (f *FakeRepository) GetUserByUserID(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	f.record("GetUserByUserID")
	if f.GetUserByUserIDFunc != nil {
		return f.GetUserByUserIDFunc(ctx, db, userID)
	}
	return nil, userdb.ErrNotFound
}

func (f *FakeRepository) GetUserForUpdate(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	f.record("GetUserForUpdate")
	if f.GetUserForUpdateFunc != nil {
		return f.GetUserForUpdateFunc(ctx, db, userID)
	}
	return nil, userdb.ErrNotFound
}

func (f *FakeRepository) ListUsers(ctx context.Context, db bun.IDB) ([]*userdb.User, error) {
	f.record("ListUsers")
	if f.ListUsersFunc != nil {
		return f.ListUsersFunc(ctx, db)
	}
	return []*userdb.User{}, nil
}

func (f *FakeRepository) UpdateUsername(ctx context.Context, db bun.IDB, userID, username string) error {
	f.record("UpdateUsername")
	if f.UpdateUsernameFunc != nil {
		return f.UpdateUsernameFunc(ctx, db, userID, username)
	}
	return nil
}

func (f *FakeRepository) UpdateStats(ctx context.Context, db bun.IDB, user *userdb.User) error {
	f.record("UpdateStats")
	if f.UpdateStatsFunc != nil {
		return f.UpdateStatsFunc(ctx, db, user)
	}
	return nil
}

func (f *FakeRepository) SetAdmin(ctx context.Context, db bun.IDB, userID string, isAdmin bool) error {
	f.record("SetAdmin")
	if f.SetAdminFunc != nil {
		return f.SetAdminFunc(ctx, db, userID, isAdmin)
	}
	return nil
}

func (f *FakeRepository) DeleteUser(ctx context.Context, db bun.IDB, userID string) error {
	f.record("DeleteUser")
	if f.DeleteUserFunc != nil {
		return f.DeleteUserFunc(ctx, db, userID)
	}
	return nil
}

var _ userdb.Repository = (*FakeRepository)(nil)

// memoryUsers backs a FakeRepository with a map keyed by user id.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*userdb.User
	next  int64
}

func newMemoryUsers(seed ...*userdb.User) *memoryUsers {
	m := &memoryUsers{users: map[string]*userdb.User{}}
	for _, u := range seed {
		m.next++
		u.ID = m.next
		m.users[u.UserID] = u
	}
	return m
}

func (m *memoryUsers) get(userID string) (*userdb.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, userdb.ErrNotFound
	}
	cp := *u
	cp.GameTypes = append([]string(nil), u.GameTypes...)
	return &cp, nil
}

func (m *memoryUsers) wire(f *FakeRepository) *FakeRepository {
	f.CreateUserFunc = func(ctx context.Context, db bun.IDB, user *userdb.User) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.users[user.UserID]; ok {
			return userdb.ErrDuplicateUser
		}
		m.next++
		user.ID = m.next
		user.UUID = uuid.New()
		user.CreatedAt = time.Now()
		cp := *user
		m.users[user.UserID] = &cp
		return nil
	}
	f.GetUserByUserIDFunc = func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
		return m.get(userID)
	}
	f.GetUserForUpdateFunc = func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
		return m.get(userID)
	}
	f.ListUsersFunc = func(ctx context.Context, db bun.IDB) ([]*userdb.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := make([]*userdb.User, 0, len(m.users))
		for _, u := range m.users {
			cp := *u
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	f.UpdateUsernameFunc = func(ctx context.Context, db bun.IDB, userID, username string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.users[userID]
		if !ok {
			return userdb.ErrNoRowsAffected
		}
		u.Username = username
		return nil
	}
	f.UpdateStatsFunc = func(ctx context.Context, db bun.IDB, user *userdb.User) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.users[user.UserID]
		if !ok {
			return userdb.ErrNoRowsAffected
		}
		u.GamesPlayed = user.GamesPlayed
		u.DistinctGameTypes = user.DistinctGameTypes
		u.CumulativeReward = user.CumulativeReward
		u.GameTypes = append([]string(nil), user.GameTypes...)
		return nil
	}
	f.SetAdminFunc = func(ctx context.Context, db bun.IDB, userID string, isAdmin bool) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.users[userID]
		if !ok {
			return userdb.ErrNoRowsAffected
		}
		u.IsAdmin = isAdmin
		return nil
	}
	f.DeleteUserFunc = func(ctx context.Context, db bun.IDB, userID string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.users[userID]; !ok {
			return userdb.ErrNoRowsAffected
		}
		delete(m.users, userID)
		return nil
	}
	return f
}

// ------------------------
// Fake Token Issuer
// ------------------------

type FakeTokenIssuer struct {
	Err      error
	Subjects []authservice.Subject
}

func (f *FakeTokenIssuer) IssueToken(_ context.Context, subject authservice.Subject) (*authservice.Session, error) {
	f.Subjects = append(f.Subjects, subject)
	if f.Err != nil {
		return nil, f.Err
	}
	return &authservice.Session{
		Token:     "token-" + subject.UserID,
		ExpiresAt: time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC),
	}, nil
}

var _ TokenIssuer = (*FakeTokenIssuer)(nil)

// ------------------------
// Fake Hasher
// ------------------------

// plainHasher prefixes instead of hashing so tests skip bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "explode" {
		return "", errors.New("hash failed")
	}
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if strings.TrimPrefix(hash, "hashed:") != password {
		return ErrInvalidCredentials
	}
	return nil
}

// ------------------------
// Fake Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (p *FakePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *FakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
