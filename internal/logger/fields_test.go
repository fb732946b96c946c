package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  access_code  ", Value: "  AB12CD34  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "access_code" || fields[0].String != "AB12CD34" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFlowFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	enriched := WithFlowFields(zap.New(core), "flow-1", "AB12CD34")
	enriched.Info("stage changed", zap.String(FieldStage, "resume"))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldFlowID] != "flow-1" {
		t.Fatalf("expected flow id flow-1, got %q", ctx[FieldFlowID])
	}
	if ctx[FieldAccessCode] != "AB12CD34" {
		t.Fatalf("expected access code AB12CD34, got %q", ctx[FieldAccessCode])
	}
	if ctx[FieldStage] != "resume" {
		t.Fatalf("expected stage resume, got %q", ctx[FieldStage])
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")

	if got := WithAIFields(nil, "", ""); got == nil {
		t.Fatalf("expected fallback logger for empty ai fields")
	}
}

func TestAIFields(t *testing.T) {
	fields := AIFields("  gemini  ", "gemini-2.5-pro")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-pro" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}
}
