package domain

import "time"

// Property is the normalized listing served to the front end. Summary and
// Details carry the variable-shape parts as JSON blobs; RawUpstream is the
// last upstream payload we applied, kept as the merge baseline.
type Property struct {
	PropertyID  string
	Title       string
	Summary     []byte // price, beds, baths, area, parking, description
	Details     []byte // address, features, amenities, images, contact
	Category    string // curated via admin, not upstream-owned
	IsActive    bool
	LastSync    *time.Time
	RawUpstream []byte
}

// BookervilleProperty mirrors the remote API record more closely than
// Property does. Summary and details refresh on independent cadences, so
// each carries its own sync stamp.
type BookervilleProperty struct {
	BkvID            string
	Name             *string
	Address1         *string
	Address2         *string
	City             *string
	State            *string
	Zip              *string
	Country          *string
	Bedrooms         *int
	Bathrooms        *float64
	MaxGuests        *int
	BookingInfo      []byte
	Availability     []byte
	Manager          []byte
	RawXML           []byte
	SummarySyncedAt  *time.Time
	DetailsSyncedAt  *time.Time
}

// ClientProperty is a manually curated Airbnb-linked record. LastSync marks
// when it was last enriched; stale rows are picked up by the syncer.
type ClientProperty struct {
	AirbnbID string
	URL      *string
	Address  *string
	Owner    *string
	LastSync *time.Time
}

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
}

type ContactMessage struct {
	ID      string
	Name    string
	Email   string
	Subject string
	Body    string
}

// PropertyCard is the trimmed read model for listing pages.
type PropertyCard struct {
	PropertyID string          `json:"property_id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Summary    map[string]any  `json:"summary,omitempty"`
}

type PropertyView struct {
	PropertyID string         `json:"property_id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	IsActive   bool           `json:"is_active"`
	Summary    map[string]any `json:"summary,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	LastSync   *time.Time     `json:"last_sync,omitempty"`
}

type CardsQuery struct {
	Category *string
	Limit    int
	Offset   int
}

// SearchQuery carries the date-ranged, guest-counted search parameters.
type SearchQuery struct {
	CheckIn  string `validate:"required,datetime=2006-01-02"`
	CheckOut string `validate:"required,datetime=2006-01-02"`
	Adults   int    `validate:"min=1,max=16"`
	Children int    `validate:"min=0,max=16"`
}

// SyncReport aggregates per-item outcomes of a batch run. Batches never
// abort on the first failure; they count and continue.
type SyncReport struct {
	Synced      int `json:"synced"`
	Deactivated int `json:"deactivated"`
	Failed      int `json:"failed"`
}

// FixReport mirrors SyncReport for the category-correction routine.
type FixReport struct {
	Fixed   int `json:"fixed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
