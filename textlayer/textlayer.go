// seehuhn.de/go/pdf2svg - render PDF pages as SVG with a selectable text layer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package textlayer synthesizes an invisible, selectable SVG text layer from
// positioned glyph runs.
//
// The glyph outlines of a page are drawn as ordinary SVG paths by the
// graphics layer.  On top of these, the functions in this package place
// zero-opacity <text> elements whose per-character offsets reproduce the
// original glyph positions, so that text can be selected and copied from the
// rendered page.
package textlayer

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/font"

	"seehuhn.de/go/pdf2svg/svg"
)

// ErrInvalidTransform indicates that a run's text rendering matrix is
// degenerate, so that no font size can be derived from it.
var ErrInvalidTransform = errors.New("textlayer: degenerate text rendering matrix")

// fallbackWidth is the advance width, in em units, used when the width of a
// glyph cannot be determined.
const fallbackWidth = 0.3

// An Item is one positioned glyph/character pair within a [Run].
type Item struct {
	// X, Y is the position of the glyph origin, in the coordinate system
	// which Run.CTM maps to device space.
	X, Y float64

	// GID identifies the glyph drawn for this item.  A negative value
	// indicates that no separate glyph was drawn, for example for the
	// second and later characters of a ligature.
	GID int32

	// Rune is the Unicode code point represented by this item.  A negative
	// value indicates that the item carries no text, for example a mark
	// with no character semantics.
	Rune int32
}

// A Run is a shaped sequence of glyph placements sharing one font, one text
// rendering matrix and one writing mode.  Runs are produced by the page
// traversal; the functions in this package only read them.
type Run struct {
	// Font is the raw font name, including any subset tag.
	Font string

	// Trm is the text rendering matrix.  Only the linear part is used;
	// per-glyph translations are carried by the item positions.
	Trm matrix.Matrix

	// CTM maps the items' coordinate system to device space.
	CTM matrix.Matrix

	// Mode is the writing direction of the run.
	Mode font.WritingMode

	Items []Item
}

// Metrics looks up glyph advance widths, in em units.
//
// A lookup failure is not fatal: the caller substitutes a fixed fallback
// width.
type Metrics interface {
	AdvanceWidth(gid int32, vertical bool) (float64, error)
}

// Normalize derives the font size and the normalizing transforms for a run.
//
// The font size is the expansion factor sqrt(|a·d-b·c|) of the text
// rendering matrix trm.  The returned matrix inv maps the run's item
// positions into the font-size-normalized, rotation-free local frame of the
// text, and placement is the transform written onto the output element so
// that consumers map the local frame back to device space.
//
// If the font size is zero, Normalize returns [ErrInvalidTransform].
func Normalize(trm, ctm matrix.Matrix) (inv, placement matrix.Matrix, fontsize float64, err error) {
	fontsize = math.Sqrt(math.Abs(trm[0]*trm[3] - trm[1]*trm[2]))
	if fontsize == 0 {
		return matrix.Matrix{}, matrix.Matrix{}, 0, ErrInvalidTransform
	}

	// Note the coefficient swap: this is not the inverse of trm, but the
	// map into the text's local unscaled frame, with the vertical axis
	// flipped for SVG.
	inv = matrix.Matrix{
		trm[3] / fontsize, -trm[1] / fontsize,
		-trm[2] / fontsize, -trm[0] / fontsize,
		0, 0,
	}
	placement = inv.Mul(ctm)
	return inv, placement, fontsize, nil
}

// glyphMetrics records the horizontal extent of one drawn glyph within a
// line, together with the number of following characters which share its
// advance.
type glyphMetrics struct {
	width      float64
	primary    float64
	followings int
}

// A line collects consecutive items which share the same secondary-axis
// coordinate.
type line struct {
	secondary float64
	glyphs    []glyphMetrics
	text      []rune
}

// Render writes the text layer for one run to w.
//
// Items without a valid Unicode value are ignored.  A run which yields no
// output characters produces no element at all.  If the run's text rendering
// matrix is degenerate, Render returns [ErrInvalidTransform] without writing
// anything.  Write errors are sticky in w and are also returned here; in
// that case the emitted markup may be truncated mid-element and the caller
// must discard the output.
func Render(w *svg.Writer, run *Run, metrics Metrics) error {
	inv, placement, fontsize, err := Normalize(run.Trm, run.CTM)
	if err != nil {
		return err
	}
	vertical := run.Mode == font.Vertical

	var items []Item
	for _, it := range run.Items {
		if it.Rune >= 0 && utf8.ValidRune(rune(it.Rune)) {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil
	}

	attrs := []svg.Attr{
		{Name: "xml:space", Value: "preserve"},
		{Name: "transform", Value: svg.Matrix(placement)},
		{Name: "font-family", Value: Family(run.Font)},
		{Name: "font-size", Value: svg.Number(fontsize) + "pt"},
	}
	if vertical {
		attrs = append(attrs, svg.Attr{Name: "writing-mode", Value: "tb"})
	}
	attrs = append(attrs, svg.Attr{Name: "opacity", Value: "0"})
	w.Start("text", attrs...)

	var cur *line
	for _, it := range items {
		x, y := apply(inv, it.X, it.Y)
		primary, secondary := x, y
		if vertical {
			primary, secondary = y, x
		}

		if cur == nil || cur.secondary != secondary {
			if cur != nil {
				cur.emit(w, vertical)
			}
			cur = &line{secondary: secondary}
		}

		if it.GID >= 0 {
			width, err := metrics.AdvanceWidth(it.GID, vertical)
			if err != nil {
				width = fallbackWidth
			}
			cur.glyphs = append(cur.glyphs, glyphMetrics{width: width, primary: primary})
		} else if n := len(cur.glyphs); n > 0 {
			// A character without its own glyph extends the advance of
			// the previous glyph.
			cur.glyphs[n-1].followings++
		} else {
			// No glyph and no preceding glyph on this line: anchor the
			// character at its own position with zero width.
			cur.glyphs = append(cur.glyphs, glyphMetrics{primary: primary})
		}
		cur.text = append(cur.text, rune(it.Rune))
	}
	cur.emit(w, vertical)

	w.End() // </text>
	return w.Error()
}

// emit converts the line into one tspan element.  Characters which share a
// glyph receive synthetic offsets, evenly spaced across the glyph's advance
// width, so that every character of the line has a selectable position.
func (ln *line) emit(w *svg.Writer, vertical bool) {
	offsets := make([]float64, 0, len(ln.text))
	for _, g := range ln.glyphs {
		offsets = append(offsets, g.primary)
		step := g.width / float64(g.followings+1)
		for i := 0; i < g.followings; i++ {
			offsets = append(offsets, g.primary+step*float64(i+1))
		}
	}

	var list strings.Builder
	for i, off := range offsets {
		if i > 0 {
			list.WriteByte(' ')
		}
		list.WriteString(svg.Number(off))
	}

	secName, listName := "y", "x"
	if vertical {
		secName, listName = "x", "y"
	}
	w.Start("tspan",
		svg.Attr{Name: secName, Value: svg.Number(ln.secondary)},
		svg.Attr{Name: listName, Value: list.String()})
	w.Text(string(ln.text))
	w.End() // </tspan>
}

func apply(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
