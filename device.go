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

package pdf2svg

import (
	"bytes"
	"errors"
	"strings"

	"seehuhn.de/go/geom/matrix"
	geompath "seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/dict"
	"seehuhn.de/go/pdf/font/glyphdata"
	"seehuhn.de/go/pdf/reader"
	"seehuhn.de/go/postscript/cid"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdf2svg/svg"
	"seehuhn.de/go/pdf2svg/textlayer"
)

// renderer implements the reader.Reader callbacks for one page.  Graphics
// and glyph outlines go directly to the page body; the text layer is
// buffered separately and spliced in by finish, so that it always ends up
// after all visible content.
type renderer struct {
	reader *reader.Reader
	body   *svg.Writer

	textBuf bytes.Buffer
	text    *svg.Writer

	fontCache map[font.Instance]*cachedFont
	path      pathBuilder

	run     *textlayer.Run
	runFont font.Instance
	metrics runMetrics
}

type cachedFont struct {
	font *sfnt.Font
}

// runMetrics holds the advance widths, in em units, reported by the shaping
// callbacks for the glyphs of the current run.
type runMetrics map[int32]float64

func (m runMetrics) AdvanceWidth(gid int32, vertical bool) (float64, error) {
	w, ok := m[gid]
	if !ok {
		return 0, errors.New("unknown glyph")
	}
	return w, nil
}

func newRenderer(rd *reader.Reader, body *svg.Writer) *renderer {
	r := &renderer{
		reader:    rd,
		body:      body,
		fontCache: make(map[font.Instance]*cachedFont),
	}
	r.text = svg.NewWriter(&r.textBuf)
	return r
}

func (r *renderer) setup() {
	r.reader.PathMoveTo = r.pathMoveTo
	r.reader.PathLineTo = r.pathLineTo
	r.reader.PathCurveTo = r.pathCurveTo
	r.reader.PathRectangle = r.pathRectangle
	r.reader.PathClose = r.pathClose
	r.reader.PathPaint = r.pathPaint
	r.reader.DrawXObject = r.drawXObject
	r.reader.Character = r.character
}

func (r *renderer) pathMoveTo(x, y float64) error {
	r.path.moveTo(x, y)
	return nil
}

func (r *renderer) pathLineTo(x, y float64) error {
	r.path.lineTo(x, y)
	return nil
}

func (r *renderer) pathCurveTo(x1, y1, x2, y2, x3, y3 float64) error {
	r.path.curveTo(x1, y1, x2, y2, x3, y3)
	return nil
}

func (r *renderer) pathRectangle(x, y, w, h float64) error {
	r.path.moveTo(x, y)
	r.path.lineTo(x+w, y)
	r.path.lineTo(x+w, y+h)
	r.path.lineTo(x, y+h)
	r.path.close()
	return nil
}

func (r *renderer) pathClose() error {
	r.path.close()
	return nil
}

// pathPaint emits the accumulated path as one SVG path element.  The path
// data stays in user space; the current transformation matrix goes into the
// transform attribute.
func (r *renderer) pathPaint(op string) error {
	d := r.path.String()
	r.path.reset()
	if d == "" || op == "n" {
		return nil
	}

	var fill, stroke bool
	var evenOdd bool
	switch op {
	case "f", "F":
		fill = true
	case "f*":
		fill, evenOdd = true, true
	case "S":
		stroke = true
	case "s":
		stroke = true
		d += "Z"
	case "B":
		fill, stroke = true, true
	case "B*":
		fill, stroke, evenOdd = true, true, true
	case "b":
		fill, stroke = true, true
		d += "Z"
	case "b*":
		fill, stroke, evenOdd = true, true, true
		d += "Z"
	default:
		return nil
	}

	attrs := []svg.Attr{
		{Name: "transform", Value: svg.Matrix(r.reader.CTM)},
		{Name: "d", Value: d},
	}
	if fill {
		attrs = append(attrs, svg.Attr{Name: "fill", Value: svgColor(r.reader.FillColor)})
		if evenOdd {
			attrs = append(attrs, svg.Attr{Name: "fill-rule", Value: "evenodd"})
		}
	} else {
		attrs = append(attrs, svg.Attr{Name: "fill", Value: "none"})
	}
	if stroke {
		lw := r.reader.LineWidth
		if lw <= 0 {
			lw = 1
		}
		attrs = append(attrs,
			svg.Attr{Name: "stroke", Value: svgColor(r.reader.StrokeColor)},
			svg.Attr{Name: "stroke-width", Value: svg.Number(lw)})
	}
	r.body.Empty("path", attrs...)
	return r.body.Error()
}

func (r *renderer) drawXObject(name string) error {
	log().Debug("skipping XObject", "name", name)
	return nil
}

// character records one shaped character for the text layer and draws its
// glyph outline.
func (r *renderer) character(c cid.CID, text string, width float64) error {
	f := r.reader.TextFont
	if f == nil {
		return nil
	}

	fs := r.reader.TextFontSize
	hs := r.reader.TextHorizontalScaling
	rise := r.reader.TextRise
	trm := matrix.Matrix{fs * hs, 0, 0, fs, 0, rise}.Mul(r.reader.TextMatrix)
	ctm := r.reader.CTM
	mode := f.WritingMode()

	if r.run == nil || r.runFont != f || r.run.Mode != mode ||
		r.run.CTM != ctm || !sameLinear(r.run.Trm, trm) {
		if err := r.flushRun(); err != nil {
			return err
		}
		r.run = &textlayer.Run{
			Font: f.PostScriptName(),
			Trm:  trm,
			CTM:  ctm,
			Mode: mode,
		}
		r.runFont = f
		r.metrics = make(runMetrics)
	}

	gid := int32(c)
	if fs != 0 {
		// width already includes the font size.
		r.metrics[gid] = width / fs
	}

	x, y := trm[4], trm[5]
	runes := []rune(text)
	if len(runes) == 0 {
		r.run.Items = append(r.run.Items, textlayer.Item{X: x, Y: y, GID: gid, Rune: -1})
	} else {
		r.run.Items = append(r.run.Items, textlayer.Item{X: x, Y: y, GID: gid, Rune: int32(runes[0])})
		for _, rn := range runes[1:] {
			r.run.Items = append(r.run.Items, textlayer.Item{X: x, Y: y, GID: -1, Rune: int32(rn)})
		}
	}

	r.drawGlyph(f, c, runes, trm, ctm)
	return r.body.Error()
}

func sameLinear(a, b matrix.Matrix) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2] && a[3] == b[3]
}

// flushRun renders the pending text run into the text layer buffer.  Runs
// with a degenerate transform are dropped with a warning; the page keeps
// converting.
func (r *renderer) flushRun() error {
	run := r.run
	metrics := r.metrics
	r.run = nil
	r.runFont = nil
	r.metrics = nil
	if run == nil || len(run.Items) == 0 {
		return nil
	}

	err := textlayer.Render(r.text, run, metrics)
	if errors.Is(err, textlayer.ErrInvalidTransform) {
		log().Warn("dropping text run with degenerate transform",
			"font", run.Font, "chars", len(run.Items))
		return nil
	}
	return err
}

// drawGlyph renders the outline of one glyph as a filled path.  Fonts whose
// programs cannot be loaded are skipped; the characters still appear in the
// text layer.
func (r *renderer) drawGlyph(f font.Instance, c cid.CID, runes []rune, trm, ctm matrix.Matrix) {
	cached, err := r.getFont(f)
	if err != nil {
		log().Debug("cannot load font program",
			"font", f.PostScriptName(), "err", err)
		return
	}
	if cached == nil || cached.font.Outlines == nil {
		return
	}

	gid := glyph.ID(c)
	if len(runes) > 0 {
		if subtable, err := cached.font.CMapTable.GetBest(); err == nil && subtable != nil {
			if g := subtable.Lookup(runes[0]); g != 0 {
				gid = g
			}
		}
	}

	var d pathBuilder
	for cmd, points := range cached.font.Outlines.Path(gid) {
		switch cmd {
		case geompath.CmdMoveTo:
			d.moveTo(points[0].X, points[0].Y)
		case geompath.CmdLineTo:
			d.lineTo(points[0].X, points[0].Y)
		case geompath.CmdQuadTo:
			d.quadTo(points[0].X, points[0].Y, points[1].X, points[1].Y)
		case geompath.CmdCubeTo:
			d.curveTo(points[0].X, points[0].Y, points[1].X, points[1].Y,
				points[2].X, points[2].Y)
		case geompath.CmdClose:
			d.close()
		}
	}
	if d.String() == "" {
		return
	}

	upem := float64(cached.font.UnitsPerEm)
	m := matrix.Matrix{1 / upem, 0, 0, 1 / upem, 0, 0}.Mul(trm).Mul(ctm)
	r.body.Empty("path",
		svg.Attr{Name: "transform", Value: svg.Matrix(m)},
		svg.Attr{Name: "d", Value: d.String()},
		svg.Attr{Name: "fill", Value: svgColor(r.reader.FillColor)})
}

func (r *renderer) getFont(f font.Instance) (*cachedFont, error) {
	if cached, ok := r.fontCache[f]; ok {
		return cached, nil
	}
	r.fontCache[f] = nil // negative-cache failures

	info := f.FontInfo()
	if info == nil {
		return nil, nil
	}

	var stream *glyphdata.Stream
	switch v := info.(type) {
	case *dict.FontInfoSimple:
		stream = v.FontFile
	case *dict.FontInfoGlyfEmbedded:
		stream = v.FontFile
	case *dict.FontInfoCID:
		stream = v.FontFile
	default:
		return nil, nil
	}
	if stream == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := stream.WriteTo(&buf, nil); err != nil {
		return nil, err
	}
	sf, err := sfnt.Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}

	cached := &cachedFont{font: sf}
	r.fontCache[f] = cached
	return cached, nil
}

// finish flushes the last text run and appends the buffered text layer as
// one group element.  The caller still has the page's svg element open.
func (r *renderer) finish() error {
	if err := r.flushRun(); err != nil {
		return err
	}
	if err := r.text.Close(); err != nil {
		return err
	}
	if r.textBuf.Len() > 0 {
		r.body.Start("g")
		r.body.Raw(r.textBuf.String())
		r.body.End()
	}
	return r.body.Error()
}

// pathBuilder assembles SVG path data.
type pathBuilder struct {
	b strings.Builder
}

func (p *pathBuilder) moveTo(x, y float64) {
	p.b.WriteByte('M')
	p.coords(x, y)
}

func (p *pathBuilder) lineTo(x, y float64) {
	p.b.WriteByte('L')
	p.coords(x, y)
}

func (p *pathBuilder) quadTo(x1, y1, x2, y2 float64) {
	p.b.WriteByte('Q')
	p.coords(x1, y1)
	p.b.WriteByte(' ')
	p.coords(x2, y2)
}

func (p *pathBuilder) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	p.b.WriteByte('C')
	p.coords(x1, y1)
	p.b.WriteByte(' ')
	p.coords(x2, y2)
	p.b.WriteByte(' ')
	p.coords(x3, y3)
}

func (p *pathBuilder) close() {
	p.b.WriteByte('Z')
}

func (p *pathBuilder) coords(x, y float64) {
	p.b.WriteString(svg.Number(x))
	p.b.WriteByte(' ')
	p.b.WriteString(svg.Number(y))
}

func (p *pathBuilder) String() string {
	return p.b.String()
}

func (p *pathBuilder) reset() {
	p.b.Reset()
}
