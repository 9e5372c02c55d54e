package buffer

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/dshills/richtext/internal/engine/rope"
	"github.com/dshills/richtext/internal/layout/index"
	"github.com/dshills/richtext/internal/style"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer is the character store of a document: text plus one style tag per
// character. All methods are thread-safe.
type Buffer struct {
	mu        sync.RWMutex
	reg       *style.Registry
	rope      rope.Rope
	runs      *index.Tree[style.Handle] // weight A = characters in run
	normalize bool
}

// New creates an empty buffer whose tags live in reg.
func New(reg *style.Registry, opts ...Option) *Buffer {
	b := &Buffer{
		reg:  reg,
		rope: rope.New(),
		runs: index.New[style.Handle](),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Registry returns the style registry the buffer's tags refer to.
func (b *Buffer) Registry() *style.Registry {
	return b.reg
}

// Read Operations

// Len returns the number of characters.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// IsEmpty returns true if the buffer holds no characters.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// Read returns the characters in [start, end).
func (b *Buffer) Read(start, end int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkRange(start, end); err != nil {
		return "", err
	}
	return b.rope.Slice(start, end), nil
}

// Slice returns the characters in [start, end), clamping the bounds.
func (b *Buffer) Slice(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(start, end)
}

// RuneAt returns the character at offset.
func (b *Buffer) RuneAt(offset int) (rune, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.RuneAt(offset)
}

// LineCount returns the number of "\n"-separated lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// TagAt returns the style tag of the character at offset.
func (b *Buffer) TagAt(offset int) (style.Handle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || offset >= b.rope.Len() {
		return style.Inherit, fmt.Errorf("tag at %d of %d: %w", offset, b.rope.Len(), ErrOffsetOutOfRange)
	}
	rank, _ := b.runs.SeekA(offset)
	return b.runs.Value(rank), nil
}

// Runs returns the style runs covering [start, end), clipped to the range.
// Out-of-range bounds clamp.
func (b *Buffer) Runs(start, end int) []style.Run {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runsIn(max(start, 0), min(end, b.rope.Len()))
}

// Write Operations

// Insert inserts text tagged with tag before offset pos. It returns the
// number of characters inserted.
func (b *Buffer) Insert(pos int, text string, tag style.Handle) (int, Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pos < 0 || pos > b.rope.Len() {
		return 0, Change{}, fmt.Errorf("insert at %d of %d: %w", pos, b.rope.Len(), ErrOffsetOutOfRange)
	}

	if b.normalize {
		text = normalizeLineEndings(text)
	}
	n := utf8.RuneCountInString(text)
	ch := Change{Type: ChangeInsert, Start: pos, OldEnd: pos, NewEnd: pos + n}
	if n == 0 {
		return 0, ch, nil
	}

	if err := b.reg.Retain(tag, n); err != nil {
		return 0, Change{}, fmt.Errorf("insert: %w", err)
	}

	b.rope = b.rope.Insert(pos, text)
	b.splice(pos, pos, []style.Run{{Len: n, Tag: tag}})

	return n, ch, nil
}

// Delete removes the characters in [start, end).
func (b *Buffer) Delete(start, end int) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(start, end); err != nil {
		return Change{}, err
	}
	ch := Change{Type: ChangeDelete, Start: start, OldEnd: end, NewEnd: start}
	if start == end {
		return ch, nil
	}

	if err := b.releaseRuns(b.runsIn(start, end)); err != nil {
		return Change{}, fmt.Errorf("delete: %w", err)
	}

	b.rope = b.rope.Delete(start, end)
	b.splice(start, end, nil)

	return ch, nil
}

// Replace replaces [start, end) with text tagged with tag. It returns the
// number of characters inserted.
func (b *Buffer) Replace(start, end int, text string, tag style.Handle) (int, Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(start, end); err != nil {
		return 0, Change{}, err
	}

	if b.normalize {
		text = normalizeLineEndings(text)
	}
	n := utf8.RuneCountInString(text)

	if err := b.reg.Retain(tag, n); err != nil {
		return 0, Change{}, fmt.Errorf("replace: %w", err)
	}
	if err := b.releaseRuns(b.runsIn(start, end)); err != nil {
		_ = b.reg.Release(tag, n)
		return 0, Change{}, fmt.Errorf("replace: %w", err)
	}

	b.rope = b.rope.Delete(start, end).Insert(start, text)
	var ins []style.Run
	if n > 0 {
		ins = []style.Run{{Len: n, Tag: tag}}
	}
	b.splice(start, end, ins)

	return n, Change{Type: ChangeReplace, Start: start, OldEnd: end, NewEnd: start + n}, nil
}

// SetStyle re-tags the characters in [start, end) with tag.
func (b *Buffer) SetStyle(start, end int, tag style.Handle) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(start, end); err != nil {
		return Change{}, err
	}
	ch := Change{Type: ChangeStyle, Start: start, OldEnd: end, NewEnd: end}
	if start == end {
		return ch, nil
	}

	n := end - start
	if err := b.reg.Retain(tag, n); err != nil {
		return Change{}, fmt.Errorf("set style: %w", err)
	}
	if err := b.releaseRuns(b.runsIn(start, end)); err != nil {
		_ = b.reg.Release(tag, n)
		return Change{}, fmt.Errorf("set style: %w", err)
	}

	b.splice(start, end, []style.Run{{Len: n, Tag: tag}})

	return ch, nil
}

// Clear removes all characters and releases their style references.
func (b *Buffer) Clear() (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.rope.Len()
	ch := Change{Type: ChangeDelete, Start: 0, OldEnd: n, NewEnd: 0}
	if n == 0 {
		return ch, nil
	}
	if err := b.releaseRuns(b.runsIn(0, n)); err != nil {
		return Change{}, fmt.Errorf("clear: %w", err)
	}
	b.rope = rope.New()
	b.runs.Clear()
	return ch, nil
}

// RunCount returns the number of coalesced style runs.
func (b *Buffer) RunCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runs.Len()
}

func (b *Buffer) checkRange(start, end int) error {
	if start < 0 || end > b.rope.Len() {
		return fmt.Errorf("range [%d,%d) of %d: %w", start, end, b.rope.Len(), ErrOffsetOutOfRange)
	}
	if start > end {
		return fmt.Errorf("range [%d,%d): %w", start, end, ErrRangeInvalid)
	}
	return nil
}

// runsIn collects the runs overlapping [start, end), clipped.
func (b *Buffer) runsIn(start, end int) []style.Run {
	if start >= end || b.runs.Len() == 0 {
		return nil
	}
	var out []style.Run
	rank, within := b.runs.SeekA(start)
	for pos := start; pos < end && rank < b.runs.Len(); rank++ {
		w, tag := b.runs.At(rank)
		take := min(w.A-within, end-pos)
		out = append(out, style.Run{Len: take, Tag: tag})
		pos += take
		within = 0
	}
	return out
}

// releaseRuns drops one reference per character of runs. On failure the
// references already dropped are restored.
func (b *Buffer) releaseRuns(runs []style.Run) error {
	for i, r := range runs {
		if err := b.reg.Release(r.Tag, r.Len); err != nil {
			for _, done := range runs[:i] {
				_ = b.reg.Retain(done.Tag, done.Len)
			}
			return err
		}
	}
	return nil
}

// splice replaces the run coverage of [start, end) with ins, keeping the
// uncovered head and tail of the boundary runs and coalescing equal
// neighbours. Character weights are in pre-edit coordinates.
func (b *Buffer) splice(start, end int, ins []style.Run) {
	size := b.runs.Len()
	total := b.runs.Total().A

	lo, head := size, 0
	var headTag style.Handle
	if start < total {
		lo, head = b.runs.SeekA(start)
		headTag = b.runs.Value(lo)
	}

	hi, tail := lo, 0
	var tailTag style.Handle
	switch {
	case end > start:
		r, in := b.runs.SeekA(end - 1)
		hi = r + 1
		w, tag := b.runs.At(r)
		tail, tailTag = w.A-in-1, tag
	case lo < size:
		hi = lo + 1
		w, tag := b.runs.At(lo)
		tail, tailTag = w.A-head, tag
	}

	var pieces []style.Run
	if lo > 0 {
		lo--
		w, tag := b.runs.At(lo)
		pieces = append(pieces, style.Run{Len: w.A, Tag: tag})
	}
	if head > 0 {
		pieces = append(pieces, style.Run{Len: head, Tag: headTag})
	}
	pieces = append(pieces, ins...)
	if tail > 0 {
		pieces = append(pieces, style.Run{Len: tail, Tag: tailTag})
	}
	if hi < size {
		w, tag := b.runs.At(hi)
		pieces = append(pieces, style.Run{Len: w.A, Tag: tag})
		hi++
	}

	items := make([]index.Item[style.Handle], 0, len(pieces))
	for _, p := range pieces {
		if p.Len == 0 {
			continue
		}
		if n := len(items); n > 0 && items[n-1].Value == p.Tag {
			items[n-1].Weight.A += p.Len
			continue
		}
		items = append(items, index.Item[style.Handle]{Weight: index.Sum{A: p.Len}, Value: p.Tag})
	}
	b.runs.Replace(lo, hi-lo, items)
}
