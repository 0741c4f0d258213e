package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/countersign/id"
)

func TestNewAuditID(t *testing.T) {
	got := id.NewAuditID()
	if got.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if !strings.HasPrefix(got.String(), "adt_") {
		t.Errorf("expected prefix %q, got %q", "adt_", got.String())
	}
	if got.Prefix() != id.PrefixAudit {
		t.Errorf("expected prefix %q, got %q", id.PrefixAudit, got.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	orig := id.NewAuditID()
	parsed, err := id.ParseAuditID(orig.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed.String(), orig.String())
	}
}

func TestParseRejectsWrongPrefix(t *testing.T) {
	other := id.New(id.Prefix("misc"))
	if _, err := id.ParseAuditID(other.String()); err == nil {
		t.Fatal("expected error for mismatched prefix")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID
	if !nilID.IsNil() {
		t.Fatal("zero value should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID should stringify empty, got %q", nilID.String())
	}

	text, err := nilID.MarshalText()
	if err != nil {
		t.Fatalf("marshal nil: %v", err)
	}
	if len(text) != 0 {
		t.Errorf("nil ID should marshal empty, got %q", text)
	}
}

func TestScan(t *testing.T) {
	orig := id.NewAuditID()

	var scanned id.ID
	if err := scanned.Scan(orig.String()); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if scanned.String() != orig.String() {
		t.Errorf("scan mismatch: %q != %q", scanned.String(), orig.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scanning nil should produce the nil ID")
	}

	var fromInt id.ID
	if err := fromInt.Scan(42); err == nil {
		t.Error("scanning an int should fail")
	}
}
