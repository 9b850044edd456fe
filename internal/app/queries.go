package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// QueryService serves the front end. Card and detail reads come from the
// local store; availability, rates, reviews and date search must be live,
// so those go through the remote client behind a short-lived cache.
type QueryService struct {
	repo     domain.PropertyRepository
	client   domain.BookervilleClient
	cache    domain.Cache
	validate *validator.Validate
	storeTTL time.Duration // local-store reads
	liveTTL  time.Duration // remote live lookups
}

func NewQueryService(r domain.PropertyRepository, c domain.BookervilleClient, cache domain.Cache, storeTTL, liveTTL time.Duration) *QueryService {
	return &QueryService{
		repo:     r,
		client:   c,
		cache:    cache,
		validate: validator.New(),
		storeTTL: storeTTL,
		liveTTL:  liveTTL,
	}
}

func (s *QueryService) Cards(ctx context.Context, q domain.CardsQuery) ([]domain.PropertyCard, error) {
	cat := ""
	if q.Category != nil {
		cat = *q.Category
	}
	key := fmt.Sprintf("cards:%s:%d:%d", cat, q.Limit, q.Offset)
	var cached []domain.PropertyCard
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	cards, err := s.repo.ListCards(ctx, q)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, cards, int(s.storeTTL.Seconds()))
	return cards, nil
}

func (s *QueryService) Property(ctx context.Context, id string) (domain.PropertyView, error) {
	key := "property:" + id
	var cached domain.PropertyView
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.PropertyView{}, err
	}
	view := toView(p)
	_ = s.cache.Set(ctx, key, view, int(s.storeTTL.Seconds()))
	return view, nil
}

// Availability is a live lookup; the cache key covers every query parameter
// so distinct date windows never share an entry.
func (s *QueryService) Availability(ctx context.Context, id, from, to string) (map[string]any, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	key := liveKey("availability", id, from, to)
	var cached map[string]any
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	out, err := s.client.Availability(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.liveTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Rates(ctx context.Context, id string) (map[string]any, error) {
	key := liveKey("rates", id)
	var cached map[string]any
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	out, err := s.client.Rates(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.liveTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Reviews(ctx context.Context, id string, limit int) ([]map[string]any, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	key := liveKey("reviews", id, fmt.Sprint(limit))
	var cached []map[string]any
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	out, err := s.client.Reviews(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.liveTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Search(ctx context.Context, q domain.SearchQuery) ([]map[string]any, error) {
	if err := s.validate.Struct(q); err != nil {
		return nil, asValidationError(err)
	}
	if err := validateDateRange(q.CheckIn, q.CheckOut); err != nil {
		return nil, err
	}
	key := liveKey("search", q.CheckIn, q.CheckOut, fmt.Sprint(q.Adults), fmt.Sprint(q.Children))
	var cached []map[string]any
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	out, err := s.client.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.liveTTL.Seconds()))
	return out, nil
}

// ---- helpers ----

func toView(p domain.Property) domain.PropertyView {
	v := domain.PropertyView{
		PropertyID: p.PropertyID,
		Title:      p.Title,
		Category:   p.Category,
		IsActive:   p.IsActive,
		LastSync:   p.LastSync,
	}
	if len(p.Summary) > 0 {
		if err := json.Unmarshal(p.Summary, &v.Summary); err != nil {
			log.Warn().Str("id", p.PropertyID).Err(err).Msg("stored summary blob unreadable")
		}
	}
	if len(p.Details) > 0 {
		if err := json.Unmarshal(p.Details, &v.Details); err != nil {
			log.Warn().Str("id", p.PropertyID).Err(err).Msg("stored details blob unreadable")
		}
	}
	return v
}

// liveKey hashes endpoint + parameters into a fixed-width cache key.
func liveKey(endpoint string, params ...string) string {
	h := sha1.New()
	for _, p := range params {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("live:%s:%s", endpoint, hex.EncodeToString(h.Sum(nil)))
}

func validateDateRange(from, to string) error {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return domain.NewValidationError("from", "must be a YYYY-MM-DD date")
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return domain.NewValidationError("to", "must be a YYYY-MM-DD date")
	}
	if !t.After(f) {
		return domain.NewValidationError("to", "must be after from")
	}
	return nil
}

// asValidationError flattens validator output into the domain type the HTTP
// layer renders with field details.
func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed " + fe.Tag() + " validation"
	}
	return &domain.ValidationError{Fields: fields}
}
