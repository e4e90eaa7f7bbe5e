package testutil

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"google.golang.org/grpc/metadata"

	"chronoManager/internal/db"
)

// OpenInMemoryDB opens a named in-memory SQLite database with the schema applied.
// The DB is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenTempDB initializes a file-backed database in a fresh temporary data directory.
func OpenTempDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT string with the claims the auth layer reads.
func GenerateJWTHS256(t *testing.T, secret, email, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}
