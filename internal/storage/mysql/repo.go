package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- write paths ----

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.PropertyID,
		p.Title,
		valJSON(p.Summary),
		valJSON(p.Details),
		p.Category,
		p.IsActive,
		valTime(p.LastSync),
		valJSON(p.RawUpstream),
	)
	return err
}

func (r *Repo) UpsertBookerville(ctx context.Context, b domain.BookervilleProperty) error {
	_, err := r.db.ExecContext(ctx, upsertBookervilleSQL,
		b.BkvID,
		valStr(b.Name),
		valStr(b.Address1),
		valStr(b.Address2),
		valStr(b.City),
		valStr(b.State),
		valStr(b.Zip),
		valStr(b.Country),
		valInt(b.Bedrooms),
		valF64(b.Bathrooms),
		valInt(b.MaxGuests),
		valJSON(b.BookingInfo),
		valJSON(b.Availability),
		valJSON(b.Manager),
		valJSON(b.RawXML),
		valTime(b.SummarySyncedAt),
		valTime(b.DetailsSyncedAt),
	)
	return err
}

// DeactivateMissing soft-deletes every active row whose id is absent from
// the current pull. Rows are never deleted; bookings and curated data keep
// their referent.
func (r *Repo) DeactivateMissing(ctx context.Context, presentIDs []string, at time.Time) (int, error) {
	if len(presentIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(presentIDs)), ",")
	args := make([]any, 0, len(presentIDs)+1)
	args = append(args, at)
	for _, id := range presentIDs {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET is_active = 0, updated_at = ?
		 WHERE is_active = 1 AND property_id NOT IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *Repo) SetCategory(ctx context.Context, propertyID, category string) error {
	res, err := r.db.ExecContext(ctx, setCategorySQL, category, propertyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for no-op updates too, so double-check existence
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM properties WHERE property_id = ?`, propertyID).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return domain.ErrNotFound
			}
			return err
		}
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, propertyID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, propertyID, status, reason)
	return err
}

// ---- read paths ----

func (r *Repo) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	row := r.db.QueryRowContext(ctx, getPropertySQL, propertyID)

	var p domain.Property
	// RawBytes is only valid inside a rows.Next loop; Row.Scan needs
	// owned []byte destinations.
	var summary, details, raw []byte
	var lastSync sql.NullTime
	if err := row.Scan(&p.PropertyID, &p.Title, &summary, &details, &p.Category, &p.IsActive, &lastSync, &raw); err != nil {
		if err == sql.ErrNoRows {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}
	p.Summary = summary
	p.Details = details
	p.RawUpstream = raw
	if lastSync.Valid {
		t := lastSync.Time
		p.LastSync = &t
	}
	return p, nil
}

func (r *Repo) ListCards(ctx context.Context, q domain.CardsQuery) ([]domain.PropertyCard, error) {
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	cat := ""
	if q.Category != nil {
		cat = *q.Category
	}
	rows, err := r.db.QueryContext(ctx, listCardsSQL, cat, cat, limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PropertyCard
	for rows.Next() {
		var card domain.PropertyCard
		var summary sql.RawBytes
		if err := rows.Scan(&card.PropertyID, &card.Title, &card.Category, &summary); err != nil {
			return nil, err
		}
		if len(summary) > 0 {
			card.Summary = decodeSummary(summary)
		}
		out = append(out, card)
	}
	return out, rows.Err()
}

func decodeSummary(b []byte) map[string]any {
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// ---- client properties ----

func (r *Repo) GetClientProperty(ctx context.Context, airbnbID string) (domain.ClientProperty, error) {
	row := r.db.QueryRowContext(ctx, getClientPropertySQL, airbnbID)
	cp, err := scanClientProperty(row.Scan)
	if err == sql.ErrNoRows {
		return domain.ClientProperty{}, domain.ErrNotFound
	}
	return cp, err
}

func (r *Repo) ListStaleClientProperties(ctx context.Context, olderThan time.Time) ([]domain.ClientProperty, error) {
	rows, err := r.db.QueryContext(ctx, listStaleClientSQL, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ClientProperty
	for rows.Next() {
		cp, err := scanClientProperty(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *Repo) TouchClientProperty(ctx context.Context, airbnbID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, touchClientPropertySQL, at, airbnbID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanClientProperty(scan func(...any) error) (domain.ClientProperty, error) {
	var cp domain.ClientProperty
	var url, address, owner sql.NullString
	var lastSync sql.NullTime
	if err := scan(&cp.AirbnbID, &url, &address, &owner, &lastSync); err != nil {
		return domain.ClientProperty{}, err
	}
	if url.Valid {
		s := url.String
		cp.URL = &s
	}
	if address.Valid {
		s := address.String
		cp.Address = &s
	}
	if owner.Valid {
		s := owner.String
		cp.Owner = &s
	}
	if lastSync.Valid {
		t := lastSync.Time
		cp.LastSync = &t
	}
	return cp, nil
}

// ---- contact ----

func (r *Repo) InsertContactMessage(ctx context.Context, m domain.ContactMessage) error {
	_, err := r.db.ExecContext(ctx, insertContactSQL, m.ID, m.Name, m.Email, m.Subject, m.Body)
	return err
}

// ---- users ----

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
