package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit = %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit = %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("over max = %d", got)
	}
	if got := NormalizeLimit(30); got != 30 {
		t.Fatalf("in range = %d", got)
	}
	if got := LimitWithBuffer(30); got != 31 {
		t.Fatalf("buffer = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	want := Cursor{
		CreatedAt: time.Date(2025, 8, 12, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(want)
	got, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if got == nil {
		t.Fatal("expected cursor")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	got, err := ParseCursor("  ")
	if err != nil || got != nil {
		t.Fatalf("blank cursor: %v %v", got, err)
	}

	if _, err := ParseCursor("not-base64!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm8tcGlwZQ=="); err == nil {
		t.Fatal("expected format error for cursor without separator")
	}
}
