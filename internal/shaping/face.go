package shaping

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// DefaultSize is the point size used when a FontRef leaves Size unset.
const DefaultSize = 12

type faceKey struct {
	mono, bold, italic bool
}

var goFonts = map[faceKey][]byte{
	{false, false, false}: goregular.TTF,
	{false, true, false}:  gobold.TTF,
	{false, false, true}:  goitalic.TTF,
	{false, true, true}:   gobolditalic.TTF,
	{true, false, false}:  gomono.TTF,
	{true, true, false}:   gomonobold.TTF,
	{true, false, true}:   gomonoitalic.TTF,
	{true, true, true}:    gomonobolditalic.TTF,
}

type lineMetrics struct {
	height, ascent fixed.Int26_6
}

// FaceProvider measures text set in the Go font family. Families whose name
// contains "mono" use Go Mono; everything else uses Go Regular. Sizes are in
// points at 72 DPI, so one point is one pixel.
//
// FaceProvider is safe for concurrent use.
type FaceProvider struct {
	mu      sync.Mutex
	buf     sfnt.Buffer
	fonts   map[faceKey]*sfnt.Font
	metrics map[style.FontRef]lineMetrics
}

// NewFaceProvider parses nothing up front; faces load on first use.
func NewFaceProvider() *FaceProvider {
	return &FaceProvider{
		fonts:   make(map[faceKey]*sfnt.Font),
		metrics: make(map[style.FontRef]lineMetrics),
	}
}

func keyFor(f style.FontRef) faceKey {
	return faceKey{
		mono:   strings.Contains(strings.ToLower(f.Family), "mono"),
		bold:   f.Bold,
		italic: f.Italic,
	}
}

func ppem(f style.FontRef) fixed.Int26_6 {
	size := f.Size
	if size <= 0 {
		size = DefaultSize
	}
	return fixed.Int26_6(size * 64)
}

// face returns the parsed font for f. Callers hold p.mu.
func (p *FaceProvider) face(f style.FontRef) (*sfnt.Font, error) {
	k := keyFor(f)
	if fnt, ok := p.fonts[k]; ok {
		return fnt, nil
	}
	fnt, err := sfnt.Parse(goFonts[k])
	if err != nil {
		return nil, fmt.Errorf("parse go font %+v: %w", k, err)
	}
	p.fonts[k] = fnt
	return fnt, nil
}

func (p *FaceProvider) lineMetrics(f style.FontRef) lineMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.metrics[f]; ok {
		return m
	}
	var m lineMetrics
	fnt, err := p.face(f)
	if err == nil {
		var fm font.Metrics
		fm, err = fnt.Metrics(&p.buf, ppem(f), font.HintingNone)
		if err == nil {
			m = lineMetrics{height: fm.Height, ascent: fm.Ascent}
		}
	}
	if err != nil {
		m = lineMetrics{height: ppem(f), ascent: ppem(f) * 4 / 5}
	}
	p.metrics[f] = m
	return m
}

// Height implements FontProvider.
func (p *FaceProvider) Height(f style.FontRef) fixed.Int26_6 {
	return p.lineMetrics(f).height
}

// Baseline implements FontProvider.
func (p *FaceProvider) Baseline(f style.FontRef) fixed.Int26_6 {
	return p.lineMetrics(f).ascent
}

// Kerning implements FontProvider. Fonts without a kern table yield zero.
func (p *FaceProvider) Kerning(f style.FontRef, left, right GlyphID) fixed.Int26_6 {
	p.mu.Lock()
	defer p.mu.Unlock()

	fnt, err := p.face(f)
	if err != nil {
		return 0
	}
	k, err := fnt.Kern(&p.buf, sfnt.GlyphIndex(left), sfnt.GlyphIndex(right), ppem(f), font.HintingNone)
	if err != nil {
		return 0
	}
	return k
}

// Glyph implements FontProvider.
func (p *FaceProvider) Glyph(f style.FontRef, r rune) (GlyphMetrics, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fnt, err := p.face(f)
	if err != nil {
		return GlyphMetrics{}, false
	}
	x, err := fnt.GlyphIndex(&p.buf, r)
	if err != nil || x == 0 {
		return GlyphMetrics{}, false
	}
	bounds, adv, err := fnt.GlyphBounds(&p.buf, x, ppem(f), font.HintingNone)
	if err != nil {
		return GlyphMetrics{}, false
	}
	return GlyphMetrics{ID: GlyphID(x), Advance: adv, Bounds: bounds}, true
}
