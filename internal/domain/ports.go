package domain

import (
	"context"
	"time"
)

type PropertyRepository interface {
	// Write paths
	UpsertProperty(ctx context.Context, p Property) error
	UpsertBookerville(ctx context.Context, b BookervilleProperty) error
	DeactivateMissing(ctx context.Context, presentIDs []string, at time.Time) (int, error)
	SetCategory(ctx context.Context, propertyID, category string) error
	LogMiss(ctx context.Context, propertyID string, status int, reason string) error

	// Read paths
	GetProperty(ctx context.Context, propertyID string) (Property, error)
	ListCards(ctx context.Context, q CardsQuery) ([]PropertyCard, error)

	// Client properties (curated Airbnb records)
	GetClientProperty(ctx context.Context, airbnbID string) (ClientProperty, error)
	ListStaleClientProperties(ctx context.Context, olderThan time.Time) ([]ClientProperty, error)
	TouchClientProperty(ctx context.Context, airbnbID string, at time.Time) error

	// Contact
	InsertContactMessage(ctx context.Context, m ContactMessage) error
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
}

// BookervilleClient is the outbound port to the remote booking API. Every
// method returns either parsed associative data or a *RemoteAPIError.
type BookervilleClient interface {
	PropertySummaries(ctx context.Context) ([]map[string]any, error)
	PropertyDetails(ctx context.Context, bkvID string) (map[string]any, error)
	Availability(ctx context.Context, bkvID string, from, to string) (map[string]any, error)
	Rates(ctx context.Context, bkvID string) (map[string]any, error)
	Reviews(ctx context.Context, bkvID string, limit int) ([]map[string]any, error)
	Search(ctx context.Context, q SearchQuery) ([]map[string]any, error)
	SubmitBooking(ctx context.Context, bkvID string, booking map[string]string) (map[string]any, error)
	PaymentStatus(ctx context.Context, bookingRef string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenStore holds opaque session tokens with a TTL.
type TokenStore interface {
	Put(ctx context.Context, token string, s Session, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (Session, bool, error)
	Revoke(ctx context.Context, token string) error
	CountLive(ctx context.Context) (int64, error)
}

type Session struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
