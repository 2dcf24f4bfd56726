package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vincave/vincave/internal/store"
	"github.com/vincave/vincave/pkg/models"
)

const (
	// DefaultBatchSize is the page size when the caller does not set one.
	DefaultBatchSize = 200
	// DefaultMaxBatches bounds pages per invocation; long backfills are
	// driven by repeated calls, not one long-lived request.
	DefaultMaxBatches = 1
	// DefaultConcurrency bounds simultaneous score+write operations within
	// one batch. Scoring is CPU-cheap; the ceiling exists to bound
	// concurrent writes against the store.
	DefaultConcurrency = 4

	// responseFailureLimit caps the failures echoed back to the caller.
	responseFailureLimit = 10
)

// Store names the persistence operations the engine consumes. The full
// store.Store satisfies it; tests inject a fake.
type Store interface {
	ListBottlesAfter(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Bottle, error)
	GetWinesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Wine, error)
	UpdateBottleReadiness(ctx context.Context, bottleID uuid.UUID, upd store.ReadinessUpdate) error
	CountBottles(ctx context.Context) (int, error)
	CreateBackfillJob(ctx context.Context, job *models.BackfillJob) error
	GetBackfillJob(ctx context.Context, id uuid.UUID) (*models.BackfillJob, error)
	UpdateBackfillJob(ctx context.Context, job *models.BackfillJob) error
}

// Authorizer is the external authorization collaborator: it answers whether
// the caller behind ctx is an administrator.
type Authorizer interface {
	IsAdmin(ctx context.Context) (bool, error)
}

// RunParams is the engine invocation contract. Set JobID to resume an
// existing job; otherwise Mode starts a new one.
type RunParams struct {
	JobID      *uuid.UUID
	Mode       models.BackfillMode
	BatchSize  int
	MaxBatches int
}

// RunResult reports cumulative job progress after one invocation.
type RunResult struct {
	JobID      uuid.UUID                `json:"job_id"`
	Processed  int                      `json:"processed"`
	Updated    int                      `json:"updated"`
	Skipped    int                      `json:"skipped"`
	Failed     int                      `json:"failed"`
	Failures   []models.BackfillFailure `json:"failures,omitempty"`
	NextCursor *uuid.UUID               `json:"next_cursor,omitempty"`
	IsComplete bool                     `json:"is_complete"`
	ElapsedMs  int64                    `json:"elapsed_ms"`
}

// Engine runs readiness backfill jobs: it walks the bottle table in stable id
// order from a persisted cursor, scores eligible bottles with bounded
// concurrency, and persists progress after every page. One invocation
// processes at most MaxBatches pages; progress survives in the job row, so a
// killed run resumes by id with nothing lost beyond the in-flight page.
type Engine struct {
	store       Store
	auth        Authorizer
	concurrency int
	now         func() time.Time
}

// NewEngine creates an Engine. concurrency <= 0 falls back to the default.
func NewEngine(s Store, auth Authorizer, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		store:       s,
		auth:        auth,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run executes up to params.MaxBatches pages of the job described by params.
// Setup failures (authorization, unknown job, unreachable store) are
// returned; per-bottle failures are absorbed into the job's counters and
// failure ring and never abort the batch.
func (e *Engine) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	start := e.now()

	ok, err := e.auth.IsAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking admin flag: %w", err)
	}
	if !ok {
		return nil, ErrNotAdmin
	}

	job, err := e.establishJob(ctx, params)
	if err != nil {
		return nil, err
	}

	maxBatches := params.MaxBatches
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}

	// Current year is read once per invocation so every bottle in the run
	// scores against the same clock.
	currentYear := e.now().UTC().Year()

	for batch := 0; batch < maxBatches && job.Status == models.BackfillStatusRunning; batch++ {
		page, err := e.store.ListBottlesAfter(ctx, job.Cursor, job.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("fetching bottle page: %w", err)
		}
		if len(page) == 0 {
			e.completeJob(job)
		} else {
			outcome := e.processPage(ctx, job, page, currentYear)
			e.advanceJob(job, page, outcome)
			if len(page) < job.BatchSize {
				e.completeJob(job)
			}
		}

		if err := e.store.UpdateBackfillJob(ctx, job); err != nil {
			return nil, fmt.Errorf("persisting job progress: %w", err)
		}

		slog.Info("backfill batch done",
			"job_id", job.ID,
			"mode", job.Mode,
			"processed", job.Processed,
			"updated", job.Updated,
			"skipped", job.Skipped,
			"failed", job.Failed,
			"complete", job.Status == models.BackfillStatusCompleted,
		)
	}

	return e.buildResult(job, e.now().Sub(start)), nil
}

// establishJob loads the job to resume or creates a fresh one.
func (e *Engine) establishJob(ctx context.Context, params RunParams) (*models.BackfillJob, error) {
	if params.JobID != nil {
		job, err := e.store.GetBackfillJob(ctx, *params.JobID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, *params.JobID)
		}
		if err != nil {
			return nil, fmt.Errorf("loading job: %w", err)
		}
		return job, nil
	}

	mode := params.Mode
	if mode == "" {
		mode = models.ModeMissingOnly
	}
	if !models.ValidBackfillMode(string(mode)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// An estimate for progress reporting only; the walker decides when the
	// job is actually done.
	total, err := e.store.CountBottles(ctx)
	if err != nil {
		return nil, fmt.Errorf("estimating candidate count: %w", err)
	}

	now := e.now().UTC()
	job := &models.BackfillJob{
		ID:             uuid.New(),
		Mode:           mode,
		BatchSize:      batchSize,
		TargetVersion:  Version,
		Status:         models.BackfillStatusRunning,
		EstimatedTotal: total,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.store.CreateBackfillJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return job, nil
}

// pageOutcome accumulates per-page deltas before they are merged into the
// job row.
type pageOutcome struct {
	mu        sync.Mutex
	processed int
	updated   int
	skipped   int
	failed    int
	failures  []models.BackfillFailure
}

// processPage scores a page's eligible bottles with bounded concurrency.
// Every bottle in the page ends up processed, skipped, or recorded as failed
// before the cursor may advance past the page.
func (e *Engine) processPage(ctx context.Context, job *models.BackfillJob, page []*models.Bottle, currentYear int) *pageOutcome {
	outcome := &pageOutcome{}

	var eligible []*models.Bottle
	for _, b := range page {
		if Eligible(job.Mode, b, job.TargetVersion) {
			eligible = append(eligible, b)
		} else {
			outcome.skipped++
		}
	}
	if len(eligible) == 0 {
		return outcome
	}

	wines, err := e.fetchWines(ctx, eligible)
	if err != nil {
		// The whole page's wine lookup failed; record every eligible
		// bottle rather than aborting siblings in earlier pages.
		outcome.mu.Lock()
		for _, b := range eligible {
			outcome.failed++
			outcome.failures = append(outcome.failures, models.BackfillFailure{
				BottleID: b.ID,
				Reason:   fmt.Sprintf("wine lookup: %v", err),
			})
		}
		outcome.mu.Unlock()
		return outcome
	}

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	for _, b := range eligible {
		wg.Add(1)
		sem <- struct{}{}
		go func(b *models.Bottle) {
			defer wg.Done()
			defer func() { <-sem }()
			e.processBottle(ctx, job, b, wines[b.WineID], currentYear, outcome)
		}(b)
	}
	wg.Wait()

	return outcome
}

func (e *Engine) fetchWines(ctx context.Context, bottles []*models.Bottle) (map[uuid.UUID]*models.Wine, error) {
	seen := make(map[uuid.UUID]bool, len(bottles))
	ids := make([]uuid.UUID, 0, len(bottles))
	for _, b := range bottles {
		if !seen[b.WineID] {
			seen[b.WineID] = true
			ids = append(ids, b.WineID)
		}
	}
	return e.store.GetWinesByIDs(ctx, ids)
}

// processBottle scores one bottle and writes its readiness fields. A missing
// wine counts as skipped; a write failure counts as failed and lands in the
// failure ring. Neither blocks siblings.
func (e *Engine) processBottle(ctx context.Context, job *models.BackfillJob, b *models.Bottle, wine *models.Wine, currentYear int, outcome *pageOutcome) {
	if wine == nil {
		outcome.mu.Lock()
		outcome.skipped++
		outcome.mu.Unlock()
		slog.Warn("bottle references unknown wine", "bottle_id", b.ID, "wine_id", b.WineID)
		return
	}

	result := Score(Input{
		Vintage: wine.Vintage,
		Color:   wine.Color,
		Region:  wine.Region,
		Grapes:  wine.Grapes,
		Profile: wine.Profile,
	}, currentYear)

	err := e.store.UpdateBottleReadiness(ctx, b.ID, store.ReadinessUpdate{
		Score:       result.Score,
		Status:      result.Status,
		WindowStart: result.WindowStart,
		WindowEnd:   result.WindowEnd,
		Confidence:  result.Confidence,
		Reasons:     result.Reasons,
		Version:     job.TargetVersion,
		UpdatedAt:   e.now().UTC(),
	})

	outcome.mu.Lock()
	defer outcome.mu.Unlock()
	outcome.processed++
	if err != nil {
		outcome.failed++
		outcome.failures = append(outcome.failures, models.BackfillFailure{
			BottleID: b.ID,
			Reason:   err.Error(),
		})
		slog.Warn("readiness write failed", "bottle_id", b.ID, "error", err)
		return
	}
	outcome.updated++
}

// advanceJob merges a page's outcome into the job row. The cursor moves to
// the last id of the fetched page — every bottle in the page has been
// attempted by now, so redoing the page after a crash is safe and scoring is
// idempotent anyway.
func (e *Engine) advanceJob(job *models.BackfillJob, page []*models.Bottle, outcome *pageOutcome) {
	job.Processed += outcome.processed
	job.Updated += outcome.updated
	job.Skipped += outcome.skipped
	job.Failed += outcome.failed

	job.RecentFailures = append(job.RecentFailures, outcome.failures...)
	if n := len(job.RecentFailures); n > models.MaxRecentFailures {
		job.RecentFailures = job.RecentFailures[n-models.MaxRecentFailures:]
	}

	last := page[len(page)-1].ID
	job.Cursor = &last
	job.UpdatedAt = e.now().UTC()
}

func (e *Engine) completeJob(job *models.BackfillJob) {
	now := e.now().UTC()
	job.Status = models.BackfillStatusCompleted
	job.CompletedAt = &now
	job.UpdatedAt = now
}

func (e *Engine) buildResult(job *models.BackfillJob, elapsed time.Duration) *RunResult {
	res := &RunResult{
		JobID:      job.ID,
		Processed:  job.Processed,
		Updated:    job.Updated,
		Skipped:    job.Skipped,
		Failed:     job.Failed,
		IsComplete: job.Status == models.BackfillStatusCompleted,
		ElapsedMs:  elapsed.Milliseconds(),
	}
	if failures := job.RecentFailures; len(failures) > 0 {
		if len(failures) > responseFailureLimit {
			failures = failures[len(failures)-responseFailureLimit:]
		}
		res.Failures = failures
	}
	if !res.IsComplete {
		res.NextCursor = job.Cursor
	}
	return res
}
