package editor

import (
	"testing"
	"unicode/utf8"
)

func TestInsertAdvancesCursor(t *testing.T) {
	e := New()
	for _, r := range "abc" {
		e.Insert(r)
	}
	if e.Text() != "abc" || e.Cursor() != 3 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}
	e.MoveLeft()
	e.Insert('X')
	if e.Text() != "abXc" || e.Cursor() != 3 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}
}

func TestMultiByteEditing(t *testing.T) {
	e := New()
	e.SetText("héllo 日本")
	if e.Cursor() != 8 {
		t.Fatalf("cursor = %d, want 8", e.Cursor())
	}

	e.DeleteBeforeCursor()
	if e.Text() != "héllo 日" {
		t.Fatalf("got %q", e.Text())
	}

	e.Home()
	e.MoveRight()
	e.MoveRight()
	e.DeleteBeforeCursor()
	if e.Text() != "hllo 日" || e.Cursor() != 1 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}

	e.Insert('ü')
	if e.Text() != "hüllo 日" || e.Cursor() != 2 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}
	if !utf8.ValidString(e.Text()) {
		t.Fatal("buffer is no longer valid UTF-8")
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	e := New()
	e.MoveLeft()
	e.DeleteBeforeCursor()
	e.DeleteAtCursor()
	if e.Cursor() != 0 || e.Text() != "" {
		t.Fatalf("empty buffer changed: %q cursor %d", e.Text(), e.Cursor())
	}

	e.SetText("ñ")
	for i := 0; i < 5; i++ {
		e.MoveRight()
	}
	if e.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", e.Cursor())
	}
	for i := 0; i < 5; i++ {
		e.MoveLeft()
	}
	if e.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", e.Cursor())
	}
}

func TestEveryPositionKeepsRunesWhole(t *testing.T) {
	const text = "a日b€c🙂"
	n := utf8.RuneCountInString(text)
	for pos := 0; pos <= n; pos++ {
		e := New()
		e.SetText(text)
		e.Home()
		for i := 0; i < pos; i++ {
			e.MoveRight()
		}
		e.Insert('é')
		if !utf8.ValidString(e.Text()) || e.Len() != n+1 {
			t.Fatalf("insert at %d produced %q", pos, e.Text())
		}
		e.DeleteBeforeCursor()
		if e.Text() != text {
			t.Fatalf("insert+delete at %d produced %q", pos, e.Text())
		}
		e.DeleteAtCursor()
		if !utf8.ValidString(e.Text()) {
			t.Fatalf("delete at %d produced invalid text", pos)
		}
	}
}

func TestDeleteAtCursor(t *testing.T) {
	e := New()
	e.SetText("abc")
	e.Home()
	e.DeleteAtCursor()
	if e.Text() != "bc" || e.Cursor() != 0 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}
	e.End()
	e.DeleteAtCursor()
	if e.Text() != "bc" {
		t.Fatalf("delete at end changed buffer: %q", e.Text())
	}
}

func TestColumnCountsWideRunes(t *testing.T) {
	e := New()
	e.SetText("日本a")
	if got := e.Column(); got != 5 {
		t.Fatalf("column = %d, want 5", got)
	}
	e.MoveLeft()
	if got := e.Column(); got != 4 {
		t.Fatalf("column = %d, want 4", got)
	}
}

func TestClear(t *testing.T) {
	e := New()
	e.SetText("something")
	e.Clear()
	if e.Text() != "" || e.Cursor() != 0 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}
}
