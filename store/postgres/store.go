// Package postgres provides a PostgreSQL implementation of the countersign
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite countersign store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("countersign: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("countersign: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Staged change operations
// ──────────────────────────────────────────────────

func (s *Store) CreateChange(ctx context.Context, c *staging.Change) error {
	if c.DateCreated.IsZero() {
		c.DateCreated = time.Now().UTC()
	}
	m := changeToModel(c)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("countersign: create change: %w", err)
	}
	c.ID = m.ID
	return nil
}

func (s *Store) GetChange(ctx context.Context, changeID int64) (*staging.Change, error) {
	m := new(changeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", changeID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("change %d: %w", changeID, staging.ErrNotFound)
		}
		return nil, fmt.Errorf("countersign: get change: %w", err)
	}
	return changeFromModel(m), nil
}

func (s *Store) UpdateChange(ctx context.Context, c *staging.Change) error {
	now := time.Now().UTC()
	c.LastModifiedOn = &now
	m := changeToModel(c)
	// The status guard keeps edits off already-resolved changes.
	res, err := s.pgdb.NewUpdate(m).
		WherePK().
		Where("status = ?", string(staging.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("countersign: update change: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("countersign: update change rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("change %d: %w", c.ID, staging.ErrNotPending)
	}
	return nil
}

func (s *Store) Transition(ctx context.Context, t *staging.Transition) (*staging.Change, error) {
	at := t.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	q := s.pgdb.NewUpdate((*changeModel)(nil)).
		Set("status = ?", string(t.To)).
		Set("approver = ?", t.Approver).
		Set("comments = ?", t.Comments).
		Set("date_approved = ?", at).
		Set("last_modified_on = ?", at).
		Where("id = ?", t.ChangeID).
		Where("status = ?", string(t.From))
	if t.ClearDataAfter {
		q = q.Set("data_after = NULL")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("countersign: transition change: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("countersign: transition change rows: %w", err)
	}
	if n == 0 {
		// Distinguish a missing change from one already resolved.
		if _, err := s.GetChange(ctx, t.ChangeID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("change %d: %w", t.ChangeID, staging.ErrNotPending)
	}
	return s.GetChange(ctx, t.ChangeID)
}

func (s *Store) ListChanges(ctx context.Context, filter *staging.ListFilter) ([]*staging.Change, error) {
	var models []changeModel
	q := s.pgdb.NewSelect(&models).OrderExpr("id DESC")
	if filter != nil {
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Kind != "" {
			q = q.Where("kind = ?", string(filter.Kind))
		}
		if filter.Creator != "" {
			q = q.Where("creator = ?", filter.Creator)
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(entity) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.OrderBy == "date_created" {
			q = q.OrderExpr("date_created ASC")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("countersign: list changes: %w", err)
	}
	result := make([]*staging.Change, len(models))
	for i := range models {
		result[i] = changeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountChanges(ctx context.Context, filter *staging.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*changeModel)(nil))
	if filter != nil {
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Kind != "" {
			q = q.Where("kind = ?", string(filter.Kind))
		}
		if filter.Creator != "" {
			q = q.Where("creator = ?", filter.Creator)
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(entity) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("countersign: count changes: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Audit record operations
// ──────────────────────────────────────────────────

func (s *Store) Record(ctx context.Context, r *audit.Record) error {
	if r.ID.IsNil() {
		r.ID = id.NewAuditID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m := auditToModel(r)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("countersign: record audit: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recordID id.AuditID) (*audit.Record, error) {
	m := new(auditModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", recordID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit record %s: %w", recordID, audit.ErrNotFound)
		}
		return nil, fmt.Errorf("countersign: get audit record: %w", err)
	}
	return auditFromModel(m), nil
}

func (s *Store) ListRecords(ctx context.Context, filter *audit.QueryFilter) ([]*audit.Record, error) {
	var models []auditModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.Type != "" {
			q = q.Where("audit_type = ?", filter.Type)
		}
		if filter.Module != "" {
			q = q.Where("module = ?", filter.Module)
		}
		if filter.CreatedBy != "" {
			q = q.Where("created_by = ?", filter.CreatedBy)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(description) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.From != nil {
			q = q.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("created_at <= ?", *filter.To)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("countersign: list audit records: %w", err)
	}
	result := make([]*audit.Record, len(models))
	for i := range models {
		result[i] = auditFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRecords(ctx context.Context, filter *audit.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*auditModel)(nil))
	if filter != nil {
		if filter.Type != "" {
			q = q.Where("audit_type = ?", filter.Type)
		}
		if filter.Module != "" {
			q = q.Where("module = ?", filter.Module)
		}
		if filter.CreatedBy != "" {
			q = q.Where("created_by = ?", filter.CreatedBy)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(description) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.From != nil {
			q = q.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("created_at <= ?", *filter.To)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("countersign: count audit records: %w", err)
	}
	return count, nil
}
