package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func newChange(entity string) *staging.Change {
	return &staging.Change{
		Entity:      entity,
		Kind:        staging.KindUserCreate,
		Capability:  permission.UsersApprove,
		DataAfter:   json.RawMessage(`{"email":"` + entity + `"}`),
		Status:      staging.StatusPending,
		Creator:     "alice@example.com",
		DateCreated: time.Now().UTC(),
	}
}

func TestChangeCreateGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	if err := s.CreateChange(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.ID == 0 {
		t.Fatal("expected store to assign an ID")
	}

	got, err := s.GetChange(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Entity != "bob@example.com" {
		t.Fatalf("expected bob@example.com, got %s", got.Entity)
	}
	if got.Status != staging.StatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}

	_, err = s.GetChange(ctx, 999)
	if !errors.Is(err, staging.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChangeIDsAreSequential(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := newChange("a@example.com")
	b := newChange("b@example.com")
	_ = s.CreateChange(ctx, a)
	_ = s.CreateChange(ctx, b)

	if a.ID >= b.ID {
		t.Fatalf("expected increasing IDs, got %d then %d", a.ID, b.ID)
	}
}

func TestUpdateChangePendingOnly(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	_ = s.CreateChange(ctx, c)

	c.DataAfter = json.RawMessage(`{"email":"bob@example.com","role":"ops"}`)
	if err := s.UpdateChange(ctx, c); err != nil {
		t.Fatal(err)
	}

	// Resolve the change, then try to edit it again.
	_, err := s.Transition(ctx, &staging.Transition{
		ChangeID: c.ID,
		From:     staging.StatusPending,
		To:       staging.StatusCompleted,
		Approver: "carol@example.com",
		Comments: "ok",
		At:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.UpdateChange(ctx, c)
	if !errors.Is(err, staging.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestTransitionApprove(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	_ = s.CreateChange(ctx, c)

	at := time.Now().UTC()
	got, err := s.Transition(ctx, &staging.Transition{
		ChangeID: c.ID,
		From:     staging.StatusPending,
		To:       staging.StatusCompleted,
		Approver: "carol@example.com",
		Comments: "looks good",
		At:       at,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != staging.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.Approver != "carol@example.com" {
		t.Fatal("approver not recorded")
	}
	if got.DateApproved == nil || !got.DateApproved.Equal(at) {
		t.Fatal("approval time not recorded")
	}
	if got.DataAfter == nil {
		t.Fatal("approve must keep the proposed payload")
	}
}

func TestTransitionDeclineClearsPayload(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	_ = s.CreateChange(ctx, c)

	got, err := s.Transition(ctx, &staging.Transition{
		ChangeID:       c.ID,
		From:           staging.StatusPending,
		To:             staging.StatusDeclined,
		Approver:       "carol@example.com",
		Comments:       "wrong role",
		ClearDataAfter: true,
		At:             time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != staging.StatusDeclined {
		t.Fatalf("expected declined, got %s", got.Status)
	}
	if got.DataAfter != nil {
		t.Fatal("decline must discard the proposed payload")
	}
}

func TestTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	_ = s.CreateChange(ctx, c)

	tr := &staging.Transition{
		ChangeID: c.ID,
		From:     staging.StatusPending,
		To:       staging.StatusCompleted,
		Approver: "carol@example.com",
		Comments: "ok",
		At:       time.Now().UTC(),
	}
	if _, err := s.Transition(ctx, tr); err != nil {
		t.Fatal(err)
	}

	// Second resolution of the same change loses the race.
	_, err := s.Transition(ctx, tr)
	if !errors.Is(err, staging.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestListChangesFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, entity := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_ = s.CreateChange(ctx, newChange(entity))
	}
	declined := newChange("d@example.com")
	_ = s.CreateChange(ctx, declined)
	_, _ = s.Transition(ctx, &staging.Transition{
		ChangeID: declined.ID,
		From:     staging.StatusPending,
		To:       staging.StatusDeclined,
		Approver: "carol@example.com",
		Comments: "no",
		At:       time.Now().UTC(),
	})

	pending, _ := s.ListChanges(ctx, &staging.ListFilter{Status: staging.StatusPending})
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(pending))
	}

	count, _ := s.CountChanges(ctx, &staging.ListFilter{Status: staging.StatusPending})
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	// Default order is newest first.
	all, _ := s.ListChanges(ctx, nil)
	if len(all) != 4 || all[0].ID != declined.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	page, _ := s.ListChanges(ctx, &staging.ListFilter{Limit: 2, Offset: 2})
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}

	byEntity, _ := s.ListChanges(ctx, &staging.ListFilter{Entity: "b@example.com"})
	if len(byEntity) != 1 {
		t.Fatalf("expected 1 match, got %d", len(byEntity))
	}

	bySearch, _ := s.ListChanges(ctx, &staging.ListFilter{Search: "C@EXAMPLE"})
	if len(bySearch) != 1 {
		t.Fatalf("expected 1 search match, got %d", len(bySearch))
	}
}

func TestGetChangeReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := newChange("bob@example.com")
	_ = s.CreateChange(ctx, c)

	got, _ := s.GetChange(ctx, c.ID)
	got.Status = staging.StatusFailed
	got.DataAfter[0] = 'X'

	again, _ := s.GetChange(ctx, c.ID)
	if again.Status != staging.StatusPending {
		t.Fatal("mutating a returned change must not affect the store")
	}
	if again.DataAfter[0] == 'X' {
		t.Fatal("mutating a returned payload must not affect the store")
	}
}

func TestAuditRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &audit.Record{
		Type:        "UserCreateInitiated",
		Module:      "users",
		Description: "bob@example.com",
		CreatedBy:   "alice@example.com",
	}
	if err := s.Record(ctx, r); err != nil {
		t.Fatal(err)
	}
	if r.ID.IsNil() {
		t.Fatal("expected store to assign an ID")
	}
	if r.CreatedAt.IsZero() {
		t.Fatal("expected store to assign a timestamp")
	}

	got, err := s.GetRecord(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "UserCreateInitiated" {
		t.Fatal("mismatch")
	}

	_, err = s.GetRecord(ctx, id.NewAuditID())
	if !errors.Is(err, audit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := s.ListRecords(ctx, &audit.QueryFilter{Module: "users"})
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}

	count, _ := s.CountRecords(ctx, &audit.QueryFilter{CreatedBy: "alice@example.com"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestAuditQueryPeriod(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := &audit.Record{Type: "UserCreateInitiated", Module: "users", CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := &audit.Record{Type: "UserCreateApproved", Module: "users", CreatedAt: time.Now()}
	_ = s.Record(ctx, old)
	_ = s.Record(ctx, recent)

	from := time.Now().Add(-time.Hour)
	list, _ := s.ListRecords(ctx, &audit.QueryFilter{From: &from})
	if len(list) != 1 || list[0].Type != "UserCreateApproved" {
		t.Fatalf("expected only the recent record, got %d", len(list))
	}

	to := time.Now().Add(-24 * time.Hour)
	list, _ = s.ListRecords(ctx, &audit.QueryFilter{To: &to})
	if len(list) != 1 || list[0].Type != "UserCreateInitiated" {
		t.Fatalf("expected only the old record, got %d", len(list))
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
