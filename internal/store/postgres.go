package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vincave/vincave/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, is_admin, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Wines ---

const wineColumns = `id, name, producer, vintage, color, region, country, grapes,
	profile_body, profile_tannin, profile_acidity, profile_oak, profile_power,
	created_at, updated_at`

func (s *PostgresStore) CreateWine(ctx context.Context, wine *models.Wine) error {
	var body, tannin, acidity, oak, power *int
	if p := wine.Profile; p != nil {
		body, tannin, acidity, oak, power = &p.Body, &p.Tannin, &p.Acidity, &p.Oak, &p.Power
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wines (id, name, producer, vintage, color, region, country, grapes,
		   profile_body, profile_tannin, profile_acidity, profile_oak, profile_power,
		   created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		wine.ID, wine.Name, wine.Producer, wine.Vintage, string(wine.Color), wine.Region,
		wine.Country, wine.Grapes, body, tannin, acidity, oak, power,
		wine.CreatedAt, wine.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create wine: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetWine(ctx context.Context, id uuid.UUID) (*models.Wine, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+wineColumns+` FROM wines WHERE id = $1`, id)
	w, err := scanWine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wine: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) GetWinesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Wine, error) {
	wines := make(map[uuid.UUID]*models.Wine, len(ids))
	if len(ids) == 0 {
		return wines, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+wineColumns+` FROM wines WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get wines by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wine: %w", err)
		}
		wines[w.ID] = w
	}
	return wines, rows.Err()
}

func (s *PostgresStore) UpdateWineProfile(ctx context.Context, id uuid.UUID, profile models.StyleProfile) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE wines SET profile_body = $2, profile_tannin = $3, profile_acidity = $4,
		   profile_oak = $5, profile_power = $6, updated_at = NOW()
		 WHERE id = $1`,
		id, profile.Body, profile.Tannin, profile.Acidity, profile.Oak, profile.Power)
	if err != nil {
		return fmt.Errorf("update wine profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWine(row pgx.Row) (*models.Wine, error) {
	var w models.Wine
	var color string
	var body, tannin, acidity, oak, power *int
	err := row.Scan(&w.ID, &w.Name, &w.Producer, &w.Vintage, &color, &w.Region, &w.Country,
		&w.Grapes, &body, &tannin, &acidity, &oak, &power, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Color = models.ParseColor(color)
	if body != nil && tannin != nil && acidity != nil && oak != nil && power != nil {
		w.Profile = &models.StyleProfile{
			Body: *body, Tannin: *tannin, Acidity: *acidity, Oak: *oak, Power: *power,
		}
	}
	return &w, nil
}

// --- Bottles ---

const bottleColumns = `id, user_id, wine_id, purchase_price, location, notes,
	readiness_score, readiness_status, drink_window_start, drink_window_end,
	confidence, readiness_reasons, readiness_version, readiness_updated_at,
	created_at, updated_at`

func (s *PostgresStore) CreateBottle(ctx context.Context, bottle *models.Bottle) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bottles (id, user_id, wine_id, purchase_price, location, notes,
		   readiness_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		bottle.ID, bottle.UserID, bottle.WineID, bottle.PurchasePrice, bottle.Location,
		bottle.Notes, bottle.ReadinessVersion, bottle.CreatedAt, bottle.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create bottle: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBottle(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Bottle, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bottleColumns+` FROM bottles WHERE id = $1 AND user_id = $2`, id, userID)
	b, err := scanBottle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bottle: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) ListBottles(ctx context.Context, filter BottleFilter) ([]*models.Bottle, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"user_id = $1"}
	args := []any{filter.UserID}
	argIdx := 2

	if filter.WineID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("wine_id = $%d", argIdx))
		args = append(args, filter.WineID)
		argIdx++
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", argIdx))
		args = append(args, filter.Location)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("readiness_status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM bottles WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bottles: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Data query
	dataQuery := fmt.Sprintf(
		`SELECT `+bottleColumns+` FROM bottles WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bottles: %w", err)
	}
	defer rows.Close()

	var bottles []*models.Bottle
	for rows.Next() {
		b, err := scanBottle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bottle: %w", err)
		}
		bottles = append(bottles, b)
	}
	return bottles, total, rows.Err()
}

func (s *PostgresStore) UpdateBottleDetails(ctx context.Context, bottle *models.Bottle) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bottles SET purchase_price = $3, location = $4, notes = $5, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		bottle.ID, bottle.UserID, bottle.PurchasePrice, bottle.Location, bottle.Notes)
	if err != nil {
		return fmt.Errorf("update bottle details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteBottle(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bottles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete bottle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBottlesAfter returns up to limit bottles strictly after the cursor in
// id order. Postgres compares uuids bytewise, so this ordering is a stable
// total order that matches byte comparison on the Go side.
func (s *PostgresStore) ListBottlesAfter(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Bottle, error) {
	var rows pgx.Rows
	var err error
	if after == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT `+bottleColumns+` FROM bottles ORDER BY id ASC LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+bottleColumns+` FROM bottles WHERE id > $1 ORDER BY id ASC LIMIT $2`, *after, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list bottles after cursor: %w", err)
	}
	defer rows.Close()

	var bottles []*models.Bottle
	for rows.Next() {
		b, err := scanBottle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bottle: %w", err)
		}
		bottles = append(bottles, b)
	}
	return bottles, rows.Err()
}

// UpdateBottleReadiness overwrites the readiness field set in a single
// statement. It touches no other columns, so it cannot conflict with the AI
// profile path or with user edits to bottle details.
func (s *PostgresStore) UpdateBottleReadiness(ctx context.Context, bottleID uuid.UUID, upd ReadinessUpdate) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bottles SET
		   readiness_score = $2, readiness_status = $3, drink_window_start = $4,
		   drink_window_end = $5, confidence = $6, readiness_reasons = $7,
		   readiness_version = $8, readiness_updated_at = $9, updated_at = NOW()
		 WHERE id = $1`,
		bottleID, upd.Score, string(upd.Status), upd.WindowStart, upd.WindowEnd,
		string(upd.Confidence), upd.Reasons, upd.Version, upd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bottle readiness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountBottles(ctx context.Context) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bottles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bottles: %w", err)
	}
	return total, nil
}

func scanBottle(row pgx.Row) (*models.Bottle, error) {
	var b models.Bottle
	var status, confidence *string
	err := row.Scan(&b.ID, &b.UserID, &b.WineID, &b.PurchasePrice, &b.Location, &b.Notes,
		&b.ReadinessScore, &status, &b.DrinkWindowStart, &b.DrinkWindowEnd,
		&confidence, &b.ReadinessReasons, &b.ReadinessVersion, &b.ReadinessUpdatedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if status != nil {
		s := models.ReadinessStatus(*status)
		b.ReadinessStatus = &s
	}
	if confidence != nil {
		c := models.Confidence(*confidence)
		b.Confidence = &c
	}
	return &b, nil
}

// --- Backfill Jobs ---

func (s *PostgresStore) CreateBackfillJob(ctx context.Context, job *models.BackfillJob) error {
	failures, err := json.Marshal(job.RecentFailures)
	if err != nil {
		return fmt.Errorf("marshal failures: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO backfill_jobs (id, mode, batch_size, target_version, status, cursor,
		   processed, updated, skipped, failed, recent_failures, estimated_total,
		   started_at, completed_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		job.ID, string(job.Mode), job.BatchSize, job.TargetVersion, job.Status, job.Cursor,
		job.Processed, job.Updated, job.Skipped, job.Failed, failures, job.EstimatedTotal,
		job.StartedAt, job.CompletedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create backfill job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBackfillJob(ctx context.Context, id uuid.UUID) (*models.BackfillJob, error) {
	var j models.BackfillJob
	var mode string
	var failures []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, mode, batch_size, target_version, status, cursor,
		   processed, updated, skipped, failed, recent_failures, estimated_total,
		   started_at, completed_at, updated_at
		 FROM backfill_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &mode, &j.BatchSize, &j.TargetVersion, &j.Status, &j.Cursor,
		&j.Processed, &j.Updated, &j.Skipped, &j.Failed, &failures, &j.EstimatedTotal,
		&j.StartedAt, &j.CompletedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get backfill job: %w", err)
	}
	j.Mode = models.BackfillMode(mode)
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &j.RecentFailures); err != nil {
			return nil, fmt.Errorf("unmarshal failures: %w", err)
		}
	}
	return &j, nil
}

// UpdateBackfillJob persists the job's cursor, counters, failure ring, and
// status in one statement. Jobs are single-writer by convention (one active
// resumption at a time), so this read-modify-write needs no row lock.
func (s *PostgresStore) UpdateBackfillJob(ctx context.Context, job *models.BackfillJob) error {
	failures, err := json.Marshal(job.RecentFailures)
	if err != nil {
		return fmt.Errorf("marshal failures: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE backfill_jobs SET status = $2, cursor = $3, processed = $4, updated = $5,
		   skipped = $6, failed = $7, recent_failures = $8, completed_at = $9, updated_at = $10
		 WHERE id = $1`,
		job.ID, job.Status, job.Cursor, job.Processed, job.Updated,
		job.Skipped, job.Failed, failures, job.CompletedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update backfill job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
