package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatalf("expected buffer of one")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	parsed, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: at, ID: "pur_1"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CreatedAt.Equal(at) || parsed.ID != "pur_1" {
		t.Fatalf("unexpected cursor %+v", parsed)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	if c, err := ParseCursor(""); c != nil || err != nil {
		t.Fatalf("expected nil cursor for empty input")
	}
	for _, bad := range []string{"%%%", EncodeCursor(Cursor{CreatedAt: time.Now()}), "bm9waXBl"} {
		if _, err := ParseCursor(bad); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("expected ErrInvalidCursor for %q, got %v", bad, err)
		}
	}
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3}
	cursorOf := func(v int) Cursor { return Cursor{CreatedAt: time.Unix(int64(v), 0), ID: "id"} }

	page, next := Trim(rows, 2, cursorOf)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected a next page, got %v %q", page, next)
	}
	c, err := ParseCursor(next)
	if err != nil || c.CreatedAt.Unix() != 2 {
		t.Fatalf("expected cursor at second row, got %+v %v", c, err)
	}

	page, next = Trim(rows, 5, cursorOf)
	if len(page) != 3 || next != "" {
		t.Fatalf("expected last page, got %v %q", page, next)
	}
}
