package authhandlers

import (
	"context"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	IssueTokenFunc    func(ctx context.Context, subject authservice.Subject) (*authservice.Session, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

func (f *FakeService) IssueToken(ctx context.Context, subject authservice.Subject) (*authservice.Session, error) {
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, subject)
	}
	return &authservice.Session{Token: "fake-token"}, nil
}

func (f *FakeService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, tokenString)
	}
	return nil, authservice.ErrMissingToken
}

var _ authservice.Service = (*FakeService)(nil)
