package userintegrationtests

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/integration_tests/testutils"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// Shared environment, created on first use and torn down by TestMain.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx     context.Context
	Repo    userdb.Repository
	BunDB   *bun.DB
	Service *userservice.UserService
	Env     *testutils.TestEnvironment
}

// GetTestEnv starts the containers once per package.
func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testEnvOnce.Do(func() {
		log.Println("Initializing user test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment(t)
	})
	if testEnvErr != nil {
		t.Fatalf("User test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// SetupTestUserService returns a service backed by the real database on a clean schema.
func SetupTestUserService(t *testing.T) TestDeps {
	t.Helper()
	env := GetTestEnv(t)

	resetCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	tokens := authservice.NewService(
		authjwt.NewProvider(env.Config.JWT.Secret, env.Config.JWT.Issuer),
		authservice.Config{DefaultTTL: env.Config.JWT.DefaultTTL},
		env.Logger,
		env.Tracer,
	)

	repo := userdb.NewRepository(env.DB)
	service := userservice.NewUserService(
		repo,
		tokens,
		userservice.BcryptHasher{Cost: bcrypt.MinCost},
		env.EventBus,
		env.Logger,
		nil,
		env.Tracer,
		env.DB,
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Repo:    repo,
		BunDB:   env.DB,
		Service: service,
		Env:     env,
	}
}
