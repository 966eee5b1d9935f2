package logger

import (
	"context"
	"testing"
)

func TestWithHitClassWritesThroughRecorder(t *testing.T) {
	ctx, rec := WithHitClassRecorder(context.Background())
	if rec.Value() != "" {
		t.Fatalf("Value() = %q before any write, want empty", rec.Value())
	}

	ctx = WithHitClass(ctx, "hit")
	if got := rec.Value(); got != "hit" {
		t.Errorf("Value() = %q, want hit", got)
	}

	// A derived request context (e.g. what a handler would build) must
	// still write through to the same recorder the middleware holds.
	derived := WithHitClass(ctx, "coalesced")
	if got := rec.Value(); got != "coalesced" {
		t.Errorf("Value() after derived write = %q, want coalesced", got)
	}
	_ = derived
}

func TestWithHitClassIgnoresEmptyString(t *testing.T) {
	ctx, rec := WithHitClassRecorder(context.Background())
	WithHitClass(ctx, "")
	if rec.Value() != "" {
		t.Errorf("Value() = %q, want empty after WithHitClass(ctx, \"\")", rec.Value())
	}
}

func TestNilRecorderValueIsEmpty(t *testing.T) {
	var rec *HitClassRecorder
	if rec.Value() != "" {
		t.Errorf("nil recorder Value() = %q, want empty", rec.Value())
	}
}
