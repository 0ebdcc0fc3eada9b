// Package editor holds the single-line buffer used while a task field is edited.
//
// The cursor is a rune offset in [0, Len()]. Every operation converts it to a
// byte offset by walking the buffer, so multi-byte text is never split.
package editor

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

type Editor struct {
	buf    string
	cursor int
}

func New() *Editor {
	return &Editor{}
}

func (e *Editor) Text() string { return e.buf }

func (e *Editor) Cursor() int { return e.cursor }

// Len is the buffer length in runes.
func (e *Editor) Len() int { return utf8.RuneCountInString(e.buf) }

// SetText replaces the buffer and puts the cursor at the end.
func (e *Editor) SetText(text string) {
	e.buf = text
	e.cursor = e.Len()
}

func (e *Editor) Clear() {
	e.buf = ""
	e.cursor = 0
}

func (e *Editor) MoveLeft() {
	e.cursor = e.clamp(e.cursor - 1)
}

func (e *Editor) MoveRight() {
	e.cursor = e.clamp(e.cursor + 1)
}

func (e *Editor) Home() { e.cursor = 0 }

func (e *Editor) End() { e.cursor = e.Len() }

// Insert puts r at the cursor and advances the cursor by one rune.
func (e *Editor) Insert(r rune) {
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	e.cursor = e.clamp(e.cursor)
	at := e.byteOffset(e.cursor)
	e.buf = e.buf[:at] + string(r) + e.buf[at:]
	e.cursor++
}

// DeleteBeforeCursor removes the rune left of the cursor. No-op at position 0.
func (e *Editor) DeleteBeforeCursor() {
	e.cursor = e.clamp(e.cursor)
	if e.cursor == 0 {
		return
	}
	e.buf = removeRune(e.buf, e.cursor-1)
	e.cursor--
}

// DeleteAtCursor removes the rune under the cursor. No-op at the end.
func (e *Editor) DeleteAtCursor() {
	e.cursor = e.clamp(e.cursor)
	if e.cursor >= e.Len() {
		return
	}
	e.buf = removeRune(e.buf, e.cursor)
}

// Column is the terminal cell column of the cursor, accounting for wide runes.
func (e *Editor) Column() int {
	return runewidth.StringWidth(e.buf[:e.byteOffset(e.clamp(e.cursor))])
}

func (e *Editor) byteOffset(runes int) int {
	off := 0
	for i := 0; i < runes && off < len(e.buf); i++ {
		_, size := utf8.DecodeRuneInString(e.buf[off:])
		off += size
	}
	return off
}

func (e *Editor) clamp(c int) int {
	if c < 0 {
		return 0
	}
	if n := e.Len(); c > n {
		return n
	}
	return c
}

func removeRune(s string, idx int) string {
	out := make([]rune, 0, len(s))
	for i, r := range []rune(s) {
		if i == idx {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
