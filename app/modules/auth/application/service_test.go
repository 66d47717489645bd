package authservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(j *FakeJWTProvider, ttl time.Duration) *service {
	s := NewService(j, Config{DefaultTTL: ttl}, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test")).(*service)
	s.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestService_IssueToken(t *testing.T) {
	ctx := context.Background()
	userUUID := uuid.New()

	tests := []struct {
		name      string
		subject   Subject
		ttl       time.Duration
		setupMock func(j *FakeJWTProvider)
		verify    func(t *testing.T, j *FakeJWTProvider, session *Session, err error)
	}{
		{
			name:    "player session",
			subject: Subject{UserID: "alice", UserUUID: userUUID},
			ttl:     time.Hour,
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					if claims.Role != authdomain.RolePlayer {
						t.Errorf("expected player role, got %s", claims.Role)
					}
					if claims.UserUUID != userUUID {
						t.Errorf("expected uuid %v, got %v", userUUID, claims.UserUUID)
					}
					if ttl != time.Hour {
						t.Errorf("expected ttl 1h, got %v", ttl)
					}
					return "signed", nil
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, session *Session, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if session.Token != "signed" {
					t.Errorf("expected token 'signed', got %q", session.Token)
				}
				want := time.Date(2026, 10, 1, 1, 0, 0, 0, time.UTC)
				if !session.ExpiresAt.Equal(want) {
					t.Errorf("expected expiry %v, got %v", want, session.ExpiresAt)
				}
			},
		},
		{
			name:    "admin session",
			subject: Subject{UserID: "root", IsAdmin: true},
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					if !claims.IsAdmin() {
						t.Errorf("expected admin role, got %s", claims.Role)
					}
					if ttl != DefaultTokenTTL {
						t.Errorf("expected default ttl, got %v", ttl)
					}
					return "admin-token", nil
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, session *Session, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			},
		},
		{
			name:    "missing subject",
			subject: Subject{},
			verify: func(t *testing.T, j *FakeJWTProvider, session *Session, err error) {
				if !errors.Is(err, ErrMissingSubject) {
					t.Errorf("expected ErrMissingSubject, got %v", err)
				}
				if len(j.Trace()) != 0 {
					t.Errorf("provider should not be called, trace %v", j.Trace())
				}
			},
		},
		{
			name:    "signing failure",
			subject: Subject{UserID: "alice"},
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					return "", errors.New("hsm offline")
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, session *Session, err error) {
				if !errors.Is(err, ErrGenerateToken) {
					t.Errorf("expected ErrGenerateToken, got %v", err)
				}
				if session != nil {
					t.Errorf("expected nil session, got %+v", session)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &FakeJWTProvider{}
			if tt.setupMock != nil {
				tt.setupMock(j)
			}
			s := newTestService(j, tt.ttl)

			session, err := s.IssueToken(ctx, tt.subject)
			tt.verify(t, j, session, err)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		token     string
		setupMock func(j *FakeJWTProvider)
		wantErr   error
	}{
		{name: "valid", token: "abc"},
		{name: "missing", token: "", wantErr: ErrMissingToken},
		{
			name:  "expired",
			token: "abc",
			setupMock: func(j *FakeJWTProvider) {
				j.ValidateTokenFunc = func(string) (*authdomain.Claims, error) {
					return nil, authjwt.ErrExpiredToken
				}
			},
			wantErr: authjwt.ErrExpiredToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &FakeJWTProvider{}
			if tt.setupMock != nil {
				tt.setupMock(j)
			}
			s := newTestService(j, 0)

			claims, err := s.ValidateToken(ctx, tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.UserID != "test-user" {
				t.Errorf("unexpected claims %+v", claims)
			}
		})
	}
}

func TestService_RoundTripWithRealProvider(t *testing.T) {
	provider := authjwt.NewProvider("round-trip-secret-with-enough-bytes", "gamezone-api")
	s := NewService(provider, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))

	session, err := s.IssueToken(context.Background(), Subject{UserID: "bob", UserUUID: uuid.New(), IsAdmin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.ValidateToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "bob" || !claims.IsAdmin() {
		t.Errorf("unexpected claims %+v", claims)
	}
}
