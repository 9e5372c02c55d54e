package layout

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/layout/index"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// paragraph is the shaped form of one paragraph. Glyph sources are relative
// to the paragraph start.
type paragraph struct {
	chars   int
	glyphs  []shaping.Glyph
	hash    uint64
	heights Cache[[]breakpoint]
	cols    []colLayout
}

// colLayout is a paragraph's share of one column.
type colLayout struct {
	seg   Range
	lines []Range // paragraph-local glyph ranges
}

// charAt returns the paragraph-local character offset where glyph g starts,
// or the paragraph length when g is past the last glyph.
func (p *paragraph) charAt(g int) int {
	if g < len(p.glyphs) {
		return p.glyphs[g].Source.Start
	}
	return p.chars
}

// glyphAt returns the index of the glyph covering paragraph-local character
// offset c, or len(glyphs) at the end of the paragraph.
func (p *paragraph) glyphAt(c int) int {
	lo, hi := 0, len(p.glyphs)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if p.glyphs[mid].Source.End > c {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// width returns the summed advance of glyphs [from, to).
func (p *paragraph) width(from, to int) fixed.Int26_6 {
	return shaping.Width(p.glyphs[from:to])
}

// hashParagraph fingerprints a paragraph's text and style runs.
func hashParagraph(runes []rune, runs []style.Run) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, r := range runes {
		binary.LittleEndian.PutUint32(buf[:4], uint32(r))
		h.Write(buf[:4])
	}
	h.Write([]byte{0xff})
	for _, r := range runs {
		binary.LittleEndian.PutUint32(buf[:4], uint32(r.Len))
		binary.LittleEndian.PutUint32(buf[4:], uint32(r.Tag))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// paragraphIndex orders paragraphs keyed by (characters, glyphs).
type paragraphIndex struct {
	t *index.Tree[*paragraph]
}

func newParagraphIndex() *paragraphIndex {
	return &paragraphIndex{t: index.New[*paragraph]()}
}

func weightOf(p *paragraph) index.Sum {
	return index.Sum{A: p.chars, B: len(p.glyphs)}
}

// count returns the number of paragraphs.
func (x *paragraphIndex) count() int { return x.t.Len() }

// chars returns the document length in characters.
func (x *paragraphIndex) chars() int { return x.t.Total().A }

// glyphs returns the document length in glyphs.
func (x *paragraphIndex) glyphs() int { return x.t.Total().B }

func (x *paragraphIndex) at(rank int) *paragraph { return x.t.Value(rank) }

// locateByChar returns the paragraph containing character offset off and the
// offset within it. A boundary offset belongs to the later paragraph and the
// document end to the final one.
func (x *paragraphIndex) locateByChar(off int) (rank, within int) {
	return x.t.SeekA(off)
}

// locateByGlyph is locateByChar over glyph offsets.
func (x *paragraphIndex) locateByGlyph(off int) (rank, within int) {
	return x.t.SeekB(off)
}

// bounds returns the character and glyph ranges of paragraph rank.
func (x *paragraphIndex) bounds(rank int) (chars, glyphs Range) {
	start := x.t.Prefix(rank)
	w := x.t.Weight(rank)
	return Range{Start: start.A, End: start.A + w.A}, Range{Start: start.B, End: start.B + w.B}
}

// insertParagraph places p after rank after; -1 inserts at the front.
func (x *paragraphIndex) insertParagraph(after int, p *paragraph) {
	x.t.Insert(after+1, weightOf(p), p)
}

// removeParagraph deletes paragraph rank and returns it.
func (x *paragraphIndex) removeParagraph(rank int) *paragraph {
	_, p := x.t.Remove(rank)
	return p
}

// adjust swaps paragraph rank for p and returns how far the character and
// glyph totals moved.
func (x *paragraphIndex) adjust(rank int, p *paragraph) (dChars, dGlyphs int) {
	d := weightOf(p).Sub(x.t.Weight(rank))
	x.t.Adjust(rank, d)
	x.t.Set(rank, x.t.Weight(rank), p)
	return d.A, d.B
}

func (x *paragraphIndex) clear() { x.t.Clear() }

// all returns every paragraph in order.
func (x *paragraphIndex) all() []*paragraph {
	items := x.t.Range(0, x.t.Len())
	out := make([]*paragraph, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}
