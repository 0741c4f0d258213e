// Package memory provides an in-memory implementation of the countersign
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/staging"
)

// Compile-time interface checks.
var (
	_ staging.Store = (*Store)(nil)
	_ audit.Store   = (*Store)(nil)
)

// Store is a thread-safe in-memory store for staged changes and audit records.
type Store struct {
	mu sync.RWMutex

	nextChangeID int64
	changes      map[int64]*staging.Change
	records      map[string]*audit.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		changes: make(map[int64]*staging.Change),
		records: make(map[string]*audit.Record),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Staging Store
// ──────────────────────────────────────────────────

func (s *Store) CreateChange(_ context.Context, c *staging.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextChangeID++
	c.ID = s.nextChangeID
	s.changes[c.ID] = copyChange(c)
	return nil
}

func (s *Store) GetChange(_ context.Context, changeID int64) (*staging.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.changes[changeID]
	if !ok {
		return nil, fmt.Errorf("change %d: %w", changeID, staging.ErrNotFound)
	}
	return copyChange(c), nil
}

func (s *Store) UpdateChange(_ context.Context, c *staging.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.changes[c.ID]
	if !ok {
		return fmt.Errorf("change %d: %w", c.ID, staging.ErrNotFound)
	}
	if cur.Status != staging.StatusPending {
		return fmt.Errorf("change %d: %w", c.ID, staging.ErrNotPending)
	}
	s.changes[c.ID] = copyChange(c)
	return nil
}

func (s *Store) Transition(_ context.Context, t *staging.Transition) (*staging.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.changes[t.ChangeID]
	if !ok {
		return nil, fmt.Errorf("change %d: %w", t.ChangeID, staging.ErrNotFound)
	}
	// The status guard makes the transition conditional. Two racing
	// resolutions serialize on the lock; the loser sees the new status.
	if c.Status != t.From {
		return nil, fmt.Errorf("change %d is %s: %w", t.ChangeID, c.Status, staging.ErrNotPending)
	}
	c.Status = t.To
	c.Approver = t.Approver
	c.Comments = t.Comments
	at := t.At
	c.DateApproved = &at
	c.LastModifiedOn = &at
	if t.ClearDataAfter {
		c.DataAfter = nil
	}
	return copyChange(c), nil
}

func (s *Store) ListChanges(_ context.Context, filter *staging.ListFilter) ([]*staging.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*staging.Change, 0, len(s.changes))
	for _, c := range s.changes {
		if !matchChange(c, filter) {
			continue
		}
		result = append(result, copyChange(c))
	}
	sortChanges(result, filter)
	return applyPagination(result, paginationOpts(filter)), nil
}

func (s *Store) CountChanges(_ context.Context, filter *staging.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, c := range s.changes {
		if matchChange(c, filter) {
			count++
		}
	}
	return count, nil
}

func matchChange(c *staging.Change, filter *staging.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.Kind != "" && c.Kind != filter.Kind {
		return false
	}
	if filter.Creator != "" && c.Creator != filter.Creator {
		return false
	}
	if filter.Entity != "" && c.Entity != filter.Entity {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(c.Entity), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}

func sortChanges(items []*staging.Change, filter *staging.ListFilter) {
	orderBy := ""
	if filter != nil {
		orderBy = filter.OrderBy
	}
	switch orderBy {
	case "date_created":
		sort.Slice(items, func(i, j int) bool { return items[i].DateCreated.Before(items[j].DateCreated) })
	default:
		// Newest first, matching the SQL backends.
		sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	}
}

// ──────────────────────────────────────────────────
// Audit Store
// ──────────────────────────────────────────────────

func (s *Store) Record(_ context.Context, r *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsNil() {
		r.ID = id.NewAuditID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.records[r.ID.String()] = copyRecord(r)
	return nil
}

func (s *Store) GetRecord(_ context.Context, recordID id.AuditID) (*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recordID.String()]
	if !ok {
		return nil, fmt.Errorf("audit record %s: %w", recordID, audit.ErrNotFound)
	}
	return copyRecord(r), nil
}

func (s *Store) ListRecords(_ context.Context, filter *audit.QueryFilter) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*audit.Record, 0, len(s.records))
	for _, r := range s.records {
		if !matchRecord(r, filter) {
			continue
		}
		result = append(result, copyRecord(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return applyPagination(result, paginationOptsAudit(filter)), nil
}

func (s *Store) CountRecords(_ context.Context, filter *audit.QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, r := range s.records {
		if matchRecord(r, filter) {
			count++
		}
	}
	return count, nil
}

func matchRecord(r *audit.Record, filter *audit.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Type != "" && r.Type != filter.Type {
		return false
	}
	if filter.Module != "" && r.Module != filter.Module {
		return false
	}
	if filter.CreatedBy != "" && r.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(r.Description), strings.ToLower(filter.Search)) {
		return false
	}
	if filter.From != nil && r.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && r.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyChange(c *staging.Change) *staging.Change {
	cp := *c
	if c.DataBefore != nil {
		cp.DataBefore = append([]byte(nil), c.DataBefore...)
	}
	if c.DataAfter != nil {
		cp.DataAfter = append([]byte(nil), c.DataAfter...)
	}
	if c.DateApproved != nil {
		t := *c.DateApproved
		cp.DateApproved = &t
	}
	if c.LastModifiedOn != nil {
		t := *c.LastModifiedOn
		cp.LastModifiedOn = &t
	}
	return &cp
}

func copyRecord(r *audit.Record) *audit.Record {
	cp := *r
	if r.DataBefore != nil {
		cp.DataBefore = append([]byte(nil), r.DataBefore...)
	}
	if r.DataAfter != nil {
		cp.DataAfter = append([]byte(nil), r.DataAfter...)
	}
	return &cp
}

type pagOpts struct{ limit, offset int }

func paginationOpts(f *staging.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsAudit(f *audit.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
