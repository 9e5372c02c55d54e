// Package style interns immutable text styles and hands out reference-counted
// handles to them.
//
// A Style is a plain comparable value: a font reference plus text, background
// and outline colors, each of which may be unset. Unset fields inherit from a
// base style when two styles are overlaid. The Registry stores exactly one
// record per structurally distinct style and tracks how many characters (or
// other holders) reference it; a record is freed when its count drops to zero.
//
// Basic usage:
//
//	reg := style.NewRegistry()
//	h := reg.Intern(style.Style{Text: style.RGB(255, 0, 0)})
//	_ = reg.Retain(h, 5) // five characters now use h
//	eff := reg.Resolve(defaults, h)
//	_ = reg.Release(h, 5) // record freed
//
// The registry is the only structure shared between documents. It serializes
// its own mutations, so several documents may intern into one registry.
package style
