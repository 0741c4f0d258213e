// Package mongo provides a MongoDB implementation of the countersign
// composite store backed by grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// Collection name constants.
const (
	colChanges  = "countersign_changes"
	colAudit    = "countersign_audit"
	colCounters = "countersign_counters"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite countersign store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all countersign collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("countersign/mongo: migrate %s indexes: %w", col, err)
		}
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all countersign collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colChanges: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "creator", Value: 1}}},
			{Keys: bson.D{{Key: "entity", Value: 1}}},
		},
		colAudit: {
			{Keys: bson.D{{Key: "audit_type", Value: 1}}},
			{Keys: bson.D{{Key: "module", Value: 1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// nextChangeID reserves the next change ID via an atomic $inc on the
// counters collection.
func (s *Store) nextChangeID(ctx context.Context) (int64, error) {
	var doc counterDoc
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": colChanges},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("countersign: next change id: %w", err)
	}
	return doc.Seq, nil
}

// ──────────────────────────────────────────────────
// Staged change operations
// ──────────────────────────────────────────────────

func (s *Store) CreateChange(ctx context.Context, c *staging.Change) error {
	nextID, err := s.nextChangeID(ctx)
	if err != nil {
		return err
	}
	if c.DateCreated.IsZero() {
		c.DateCreated = now()
	}
	c.ID = nextID
	m := changeToModel(c)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("countersign: create change: %w", err)
	}
	return nil
}

func (s *Store) GetChange(ctx context.Context, changeID int64) (*staging.Change, error) {
	var m changeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": changeID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("change %d: %w", changeID, staging.ErrNotFound)
		}
		return nil, fmt.Errorf("countersign: get change: %w", err)
	}
	return changeFromModel(&m), nil
}

func (s *Store) UpdateChange(ctx context.Context, c *staging.Change) error {
	t := now()
	c.LastModifiedOn = &t
	m := changeToModel(c)
	// The status filter keeps edits off already-resolved changes.
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "status": string(staging.StatusPending)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("countersign: update change: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("change %d: %w", c.ID, staging.ErrNotPending)
	}
	return nil
}

func (s *Store) Transition(ctx context.Context, t *staging.Transition) (*staging.Change, error) {
	cur, err := s.GetChange(ctx, t.ChangeID)
	if err != nil {
		return nil, err
	}
	at := t.At
	if at.IsZero() {
		at = now()
	}
	cur.Status = t.To
	cur.Approver = t.Approver
	cur.Comments = t.Comments
	cur.DateApproved = &at
	cur.LastModifiedOn = &at
	if t.ClearDataAfter {
		cur.DataAfter = nil
	}
	m := changeToModel(cur)
	// The status filter makes the replace conditional. A racing resolver
	// that already moved the change off From matches nothing here.
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "status": string(t.From)}).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("countersign: transition change: %w", err)
	}
	if res.MatchedCount() == 0 {
		return nil, fmt.Errorf("change %d: %w", t.ChangeID, staging.ErrNotPending)
	}
	return cur, nil
}

func (s *Store) ListChanges(ctx context.Context, filter *staging.ListFilter) ([]*staging.Change, error) {
	var models []changeModel
	f := changeFilter(filter)
	sortKey := bson.D{{Key: "_id", Value: -1}}
	if filter != nil && filter.OrderBy == "date_created" {
		sortKey = bson.D{{Key: "date_created", Value: 1}}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(sortKey)
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*changeModel)(nil)).
		Filter(changeFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("countersign: count changes: %w", err)
	}
	return count, nil
}

func changeFilter(filter *staging.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Status != "" {
		f["status"] = string(filter.Status)
	}
	if filter.Kind != "" {
		f["kind"] = string(filter.Kind)
	}
	if filter.Creator != "" {
		f["creator"] = filter.Creator
	}
	if filter.Entity != "" {
		f["entity"] = filter.Entity
	}
	if filter.Search != "" {
		f["entity"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

// ──────────────────────────────────────────────────
// Audit record operations
// ──────────────────────────────────────────────────

func (s *Store) Record(ctx context.Context, r *audit.Record) error {
	if r.ID.IsNil() {
		r.ID = id.NewAuditID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	m := auditToModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("countersign: record audit: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recordID id.AuditID) (*audit.Record, error) {
	var m auditModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": recordID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("audit record %s: %w", recordID, audit.ErrNotFound)
		}
		return nil, fmt.Errorf("countersign: get audit record: %w", err)
	}
	return auditFromModel(&m), nil
}

func (s *Store) ListRecords(ctx context.Context, filter *audit.QueryFilter) ([]*audit.Record, error) {
	var models []auditModel
	q := s.mdb.NewFind(&models).
		Filter(auditFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*auditModel)(nil)).
		Filter(auditFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("countersign: count audit records: %w", err)
	}
	return count, nil
}

func auditFilter(filter *audit.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Type != "" {
		f["audit_type"] = filter.Type
	}
	if filter.Module != "" {
		f["module"] = filter.Module
	}
	if filter.CreatedBy != "" {
		f["created_by"] = filter.CreatedBy
	}
	if filter.Search != "" {
		f["description"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	if filter.From != nil || filter.To != nil {
		rng := bson.M{}
		if filter.From != nil {
			rng["$gte"] = *filter.From
		}
		if filter.To != nil {
			rng["$lte"] = *filter.To
		}
		f["created_at"] = rng
	}
	return f
}
