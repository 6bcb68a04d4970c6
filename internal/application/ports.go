package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// PasswordHasher is satisfied by helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// Geocoder resolves a free-form address into a point.
// It returns an apperror NotFound when the provider has no match and Upstream when the provider fails.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*entity.Location, error)
}

// PhotoStore persists an uploaded photo under name and returns the value stored on the bootcamp.
type PhotoStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// SearchIndex mirrors bootcamps into a full-text index.
type SearchIndex interface {
	Index(ctx context.Context, b *entity.Bootcamp) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]query.Record, error)
}

// RequestMeta describes the HTTP request that triggered an operation.
type RequestMeta struct {
	IP        string
	UserAgent string
	// APIBase is scheme://host followed by the API prefix, used to build links sent by email.
	APIBase string
}
