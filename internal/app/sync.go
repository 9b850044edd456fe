package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// SyncService runs the full refresh cycle against the remote feed. It is
// at-least-once per property: a failure mid-batch leaves earlier rows
// updated and is reported in the counters, never aborts the run.
type SyncService struct {
	client  domain.BookervilleClient
	repo    domain.PropertyRepository
	cache   domain.Cache
	workers int
	now     func() time.Time
}

func NewSyncService(c domain.BookervilleClient, r domain.PropertyRepository, cache domain.Cache, workers int) *SyncService {
	if workers <= 0 {
		workers = 4
	}
	return &SyncService{client: c, repo: r, cache: cache, workers: workers, now: time.Now}
}

// FullSync pulls the summary list, then per property the details, merges
// them onto the local rows, and soft-deletes whatever the pull no longer
// contains. Only the initial list fetch is fatal.
func (s *SyncService) FullSync(ctx context.Context) (domain.SyncReport, error) {
	summaries, err := s.client.PropertySummaries(ctx)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("pull summary list: %w", err)
	}
	pullTime := s.now().UTC()

	var (
		mu      sync.Mutex
		report  domain.SyncReport
		present []string
	)
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	var acquireErr error
	for _, summary := range summaries {
		id := deref(firstNonEmptyAlias(summary, propertyAliases, "id"))
		if id == "" {
			mu.Lock()
			report.Failed++
			mu.Unlock()
			log.Warn().Msg("summary row without property id, skipped")
			continue
		}
		// the listing pull vouches for the property regardless of how
		// the per-item work goes; only absence deactivates
		present = append(present, id)

		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = err
			break
		}
		wg.Add(1)
		go func(id string, summary map[string]any) {
			defer wg.Done()
			defer sem.Release(1)

			ok := s.syncOne(ctx, id, summary, pullTime)
			mu.Lock()
			if ok {
				report.Synced++
			} else {
				report.Failed++
			}
			mu.Unlock()
		}(id, summary)
	}
	wg.Wait()
	if acquireErr != nil {
		return report, acquireErr
	}

	if len(present) > 0 {
		n, err := s.repo.DeactivateMissing(ctx, present, pullTime)
		if err != nil {
			log.Error().Err(err).Msg("deactivate missing properties failed")
		}
		report.Deactivated = n
	}

	log.Info().
		Int("synced", report.Synced).
		Int("deactivated", report.Deactivated).
		Int("failed", report.Failed).
		Time("pull", pullTime).
		Msg("full sync finished")
	return report, nil
}

func (s *SyncService) syncOne(ctx context.Context, id string, summary map[string]any, pullTime time.Time) bool {
	// stamp the mirror from the list row first, so summary_synced_at
	// records the pull even when the details fetch below fails
	if err := s.repo.UpsertBookerville(ctx, mapBookervilleSummary(summary, pullTime)); err != nil {
		log.Warn().Str("id", id).Err(err).Msg("bookerville summary upsert failed")
	}

	details, err := s.client.PropertyDetails(ctx, id)
	if err != nil {
		status := 0
		var rerr *domain.RemoteAPIError
		if errors.As(err, &rerr) {
			status = rerr.Status
		}
		_ = s.repo.LogMiss(ctx, id, status, "details fetch")
		log.Warn().Str("id", id).Err(err).Msg("details fetch failed")
		return false
	}

	upstream := mapProperty(details, pullTime)
	if upstream.PropertyID == "" {
		upstream.PropertyID = id
	}

	merged := upstream
	existing, err := s.repo.GetProperty(ctx, id)
	switch {
	case err == nil:
		merged = domain.MergeProperty(existing, upstream, s.lastUpstream(existing, pullTime))
	case errors.Is(err, domain.ErrNotFound):
		// first sighting, take upstream wholesale
	default:
		_ = s.repo.LogMiss(ctx, id, 0, "read existing")
		log.Warn().Str("id", id).Err(err).Msg("read existing property failed")
		return false
	}

	if err := s.repo.UpsertProperty(ctx, merged); err != nil {
		_ = s.repo.LogMiss(ctx, id, 0, "upsert")
		log.Warn().Str("id", id).Err(err).Msg("property upsert failed")
		return false
	}
	if err := s.repo.UpsertBookerville(ctx, mapBookerville(details, pullTime)); err != nil {
		// mirror row is audit data; the primary row already landed
		log.Warn().Str("id", id).Err(err).Msg("bookerville mirror upsert failed")
	}

	s.invalidateProperty(ctx, id)
	return true
}

// lastUpstream reconstructs the previously applied upstream record from the
// stored snapshot, giving MergeProperty its baseline.
func (s *SyncService) lastUpstream(existing domain.Property, pullTime time.Time) domain.Property {
	if len(existing.RawUpstream) == 0 {
		return domain.Property{}
	}
	var snap map[string]any
	if err := json.Unmarshal(existing.RawUpstream, &snap); err != nil {
		log.Warn().Str("id", existing.PropertyID).Err(err).Msg("stored upstream snapshot unreadable")
		return domain.Property{}
	}
	return mapProperty(snap, pullTime)
}

// FixCategories restores curated categories from a correction map. It exists
// for the day a bad deploy let a sync clobber admin edits; with the merge
// policy in place it normally reports all-skipped.
func (s *SyncService) FixCategories(ctx context.Context, corrections map[string]string) domain.FixReport {
	var report domain.FixReport
	for id, category := range corrections {
		existing, err := s.repo.GetProperty(ctx, id)
		if err != nil {
			report.Failed++
			log.Warn().Str("id", id).Err(err).Msg("fix-categories: lookup failed")
			continue
		}
		if existing.Category == category {
			report.Skipped++
			continue
		}
		if err := s.repo.SetCategory(ctx, id, category); err != nil {
			report.Failed++
			log.Warn().Str("id", id).Err(err).Msg("fix-categories: update failed")
			continue
		}
		s.invalidateProperty(ctx, id)
		report.Fixed++
	}
	log.Info().
		Int("fixed", report.Fixed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("category fix finished")
	return report
}

// RefreshClientProperties re-stamps curated Airbnb records whose enrichment
// is older than maxAge. Airbnb exposes no feed, so "enrichment" is a
// restamp once the curated row passes sanity checks.
func (s *SyncService) RefreshClientProperties(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-maxAge)
	stale, err := s.repo.ListStaleClientProperties(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, cp := range stale {
		if cp.URL == nil || *cp.URL == "" {
			log.Warn().Str("airbnb_id", cp.AirbnbID).Msg("client property without URL, left stale")
			continue
		}
		if err := s.repo.TouchClientProperty(ctx, cp.AirbnbID, s.now().UTC()); err != nil {
			log.Warn().Str("airbnb_id", cp.AirbnbID).Err(err).Msg("client property restamp failed")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *SyncService) invalidateProperty(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "property:"+id)
}
