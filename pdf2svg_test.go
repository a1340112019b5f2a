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
	"fmt"
	"io"
	"iter"
	"strings"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/charcode"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/pdf/reader"

	"seehuhn.de/go/pdf2svg/svg"
)

type mockGetter struct {
	pdf.Getter
	failRef  pdf.Reference
	pagesRef pdf.Reference
}

func (m *mockGetter) Get(ref pdf.Reference, resolve bool) (pdf.Native, error) {
	if ref == m.failRef {
		return nil, fmt.Errorf("mock error at ref %v", ref)
	}

	switch ref {
	case 100: // Pages node with two pages
		return pdf.Dict{
			"Type":  pdf.Name("Pages"),
			"Count": pdf.Integer(2),
			"Kids":  pdf.Array{pdf.Reference(101), pdf.Reference(102)},
		}, nil
	case 101, 102: // empty pages
		return pdf.Dict{
			"Type":     pdf.Name("Page"),
			"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(612), pdf.Integer(792)},
		}, nil
	}
	return nil, fmt.Errorf("unknown ref %v", ref)
}

func (m *mockGetter) GetMeta() *pdf.MetaInfo {
	return &pdf.MetaInfo{
		Version: pdf.V1_7,
		Catalog: &pdf.Catalog{
			Pages: m.pagesRef,
		},
	}
}

type mockFont struct {
	name string
	mode font.WritingMode
}

func (m *mockFont) PostScriptName() string                       { return m.name }
func (m *mockFont) WritingMode() font.WritingMode                { return m.mode }
func (m *mockFont) Codec() *charcode.Codec                       { return nil }
func (m *mockFont) Codes(s pdf.String) iter.Seq[*font.Code]      { return nil }
func (m *mockFont) FontInfo() any                                { return nil }
func (m *mockFont) AsPDF(opt pdf.OutputOptions) pdf.Native       { return nil }
func (m *mockFont) Embed(e *pdf.EmbedHelper) (pdf.Native, error) { return nil, nil }

func TestConvertPageEmpty(t *testing.T) {
	c := NewConverter(&mockGetter{})
	pageDict := pdf.Dict{
		"Type":     pdf.Name("Page"),
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(612), pdf.Integer(792)},
	}

	buf := &bytes.Buffer{}
	err := c.ConvertPage(buf, pageDict)
	if err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("missing svg root element: %q", got)
	}
	for _, want := range []string{`width="612"`, `height="792"`, `viewBox="0 0 612 792"`, `</svg>`} {
		if !strings.Contains(got, want) {
			t.Errorf("%s missing in %q", want, got)
		}
	}
}

func TestConvertPageErrors(t *testing.T) {
	c := NewConverter(&mockGetter{})

	badPages := []pdf.Object{
		pdf.Name("not-a-dict"),
		pdf.Dict{
			"Type":     pdf.Name("Page"),
			"MediaBox": pdf.Name("not-an-array"),
		},
		pdf.Dict{
			"Type":     pdf.Name("Page"),
			"MediaBox": pdf.Array{},
		},
		pdf.Dict{ // empty box
			"Type":     pdf.Name("Page"),
			"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(0), pdf.Integer(792)},
		},
	}
	for i, pageObj := range badPages {
		buf := &bytes.Buffer{}
		if err := c.ConvertPage(buf, pageObj); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

type pageBuffer struct {
	bytes.Buffer
}

func (p *pageBuffer) Close() error { return nil }

func TestConvertDocument(t *testing.T) {
	c := NewConverter(&mockGetter{pagesRef: 100})

	var pages []*pageBuffer
	err := c.ConvertDocument(func(pageNo int) (io.WriteCloser, error) {
		if pageNo != len(pages)+1 {
			t.Errorf("page number %d out of order", pageNo)
		}
		buf := &pageBuffer{}
		pages = append(pages, buf)
		return buf, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, p := range pages {
		if !strings.HasPrefix(p.String(), "<svg ") {
			t.Errorf("page %d: not an SVG document: %q", i+1, p.String())
		}
	}
}

func TestConvertDocumentErrors(t *testing.T) {
	open := func(pageNo int) (io.WriteCloser, error) {
		return &pageBuffer{}, nil
	}

	c1 := NewConverter(&mockGetter{failRef: 100, pagesRef: 100})
	if err := c1.ConvertDocument(open); err == nil {
		t.Error("expected error from page tree")
	}

	c2 := NewConverter(&mockGetter{failRef: 102, pagesRef: 100})
	if err := c2.ConvertDocument(open); err == nil {
		t.Error("expected error from second page")
	}
}

type errorWriter struct {
	failAtByte int
	written    int
}

func (e *errorWriter) Write(p []byte) (n int, err error) {
	for i := range p {
		if e.written >= e.failAtByte {
			return i, fmt.Errorf("write error at byte %d", e.written)
		}
		e.written++
	}
	return len(p), nil
}

func TestConvertPageWriteError(t *testing.T) {
	c := NewConverter(&mockGetter{})
	pageDict := pdf.Dict{
		"Type":     pdf.Name("Page"),
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(612), pdf.Integer(792)},
	}
	if err := c.ConvertPage(&errorWriter{failAtByte: 10}, pageDict); err == nil {
		t.Error("write error not reported")
	}
}

func TestPathPaint(t *testing.T) {
	cases := []struct {
		op   string
		want []string
		omit []string
	}{
		{"f", []string{`d="M0 0L10 0L10 10Z"`, `fill="#000"`}, []string{"stroke", "evenodd"}},
		{"f*", []string{`fill-rule="evenodd"`}, []string{"stroke"}},
		{"S", []string{`fill="none"`, `stroke="#000"`, `stroke-width="1"`}, nil},
		{"s", []string{`d="M0 0L10 0L10 10ZZ"`, `stroke="#000"`}, nil},
		{"B", []string{`fill="#000"`, `stroke="#000"`}, []string{"evenodd"}},
		{"b*", []string{`fill-rule="evenodd"`, `stroke="#000"`}, nil},
	}

	for _, tc := range cases {
		rd := reader.New(&mockGetter{}, nil)
		rd.CTM = matrix.Identity

		buf := &bytes.Buffer{}
		ren := newRenderer(rd, svg.NewWriter(buf))
		ren.pathMoveTo(0, 0)
		ren.pathLineTo(10, 0)
		ren.pathLineTo(10, 10)
		ren.pathClose()
		if err := ren.pathPaint(tc.op); err != nil {
			t.Fatalf("op %q: %v", tc.op, err)
		}

		got := buf.String()
		if !strings.Contains(got, `transform="matrix(1,0,0,1,0,0)"`) {
			t.Errorf("op %q: transform missing in %q", tc.op, got)
		}
		for _, want := range tc.want {
			if !strings.Contains(got, want) {
				t.Errorf("op %q: %s missing in %q", tc.op, want, got)
			}
		}
		for _, bad := range tc.omit {
			if strings.Contains(got, bad) {
				t.Errorf("op %q: unexpected %s in %q", tc.op, bad, got)
			}
		}
	}
}

func TestPathPaintNoOp(t *testing.T) {
	rd := reader.New(&mockGetter{}, nil)
	buf := &bytes.Buffer{}
	ren := newRenderer(rd, svg.NewWriter(buf))

	ren.pathRectangle(0, 0, 10, 10)
	if err := ren.pathPaint("n"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("op n produced output: %q", buf.String())
	}

	// the path must be gone
	if err := ren.pathPaint("f"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("path not cleared: %q", buf.String())
	}
}

func TestTextLayerRun(t *testing.T) {
	rd := reader.New(&mockGetter{}, nil)
	rd.TextFont = &mockFont{name: "Helvetica"}
	rd.TextFontSize = 12
	rd.TextHorizontalScaling = 1
	rd.TextMatrix = matrix.Identity
	rd.CTM = matrix.Matrix{1, 0, 0, -1, 0, 792}

	buf := &bytes.Buffer{}
	ren := newRenderer(rd, svg.NewWriter(buf))
	if err := ren.character(5, "A", 7.2); err != nil {
		t.Fatal(err)
	}
	if err := ren.finish(); err != nil {
		t.Fatal(err)
	}

	want := `<g><text xml:space="preserve" transform="matrix(1,0,0,1,0,792)"` +
		` font-family="Helvetica" font-size="12pt" opacity="0">` +
		`<tspan y="0" x="0">A</tspan></text></g>`
	if got := buf.String(); got != want {
		t.Errorf("text layer\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRunBoundaries(t *testing.T) {
	rd := reader.New(&mockGetter{}, nil)
	rd.TextFont = &mockFont{name: "Helvetica"}
	rd.TextFontSize = 12
	rd.TextHorizontalScaling = 1
	rd.TextMatrix = matrix.Identity
	rd.CTM = matrix.Identity

	buf := &bytes.Buffer{}
	ren := newRenderer(rd, svg.NewWriter(buf))

	// same font and matrix: one run
	ren.character(1, "a", 6)
	ren.character(2, "b", 6)
	// font size change: new run
	rd.TextFontSize = 24
	ren.character(3, "c", 12)
	// font change: third run
	rd.TextFont = &mockFont{name: "Courier"}
	ren.character(4, "d", 12)
	if err := ren.finish(); err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(buf.String(), "<text "); got != 3 {
		t.Errorf("got %d text elements, want 3:\n%s", got, buf.String())
	}
}

func TestDegenerateRunSkipped(t *testing.T) {
	rd := reader.New(&mockGetter{}, nil)
	rd.TextFont = &mockFont{name: "Helvetica"}
	rd.TextFontSize = 0 // degenerate
	rd.TextHorizontalScaling = 1
	rd.TextMatrix = matrix.Identity
	rd.CTM = matrix.Identity

	buf := &bytes.Buffer{}
	ren := newRenderer(rd, svg.NewWriter(buf))
	if err := ren.character(1, "a", 6); err != nil {
		t.Fatal(err)
	}
	if err := ren.finish(); err != nil {
		t.Fatalf("degenerate run must be skipped, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("degenerate run produced output: %q", buf.String())
	}
}

func TestSVGColor(t *testing.T) {
	cases := []struct {
		c    pdfcolor.Color
		want string
	}{
		{nil, "#000"},
		{pdfcolor.DeviceGray(0.5), "rgb(128,128,128)"},
		{pdfcolor.DeviceGray(2), "rgb(255,255,255)"}, // clamped
		{pdfcolor.DeviceRGB(1, 0, 0), "rgb(255,0,0)"},
		{pdfcolor.DeviceCMYK(0, 0, 0, 1), "rgb(0,0,0)"},
		{pdfcolor.DeviceCMYK(1, 0, 0, 0), "rgb(0,255,255)"},
	}
	for _, tc := range cases {
		if got := svgColor(tc.c); got != tc.want {
			t.Errorf("svgColor(%v): got %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestRunMetrics(t *testing.T) {
	m := runMetrics{7: 0.6}
	if w, err := m.AdvanceWidth(7, false); err != nil || w != 0.6 {
		t.Errorf("got (%g, %v), want (0.6, nil)", w, err)
	}
	if _, err := m.AdvanceWidth(8, false); err == nil {
		t.Error("missing glyph did not report an error")
	}
}
