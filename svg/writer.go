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

// Package svg writes SVG markup as a stream of events.
package svg

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
)

// An Attr is a single attribute of a markup element.
type Attr struct {
	Name  string
	Value string
}

// A Writer streams SVG markup to an underlying [io.Writer].
//
// The writer keeps track of open elements and escapes all character data and
// attribute values.  Write errors are sticky: after the first error all
// further output is discarded, and the error is reported by [Writer.Error]
// and [Writer.Close].
type Writer struct {
	w    *bufio.Writer
	open []string
	err  error
}

// NewWriter allocates a new Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Start writes the opening tag of a new element.
// The element stays open until the matching call to [Writer.End].
func (w *Writer) Start(name string, attrs ...Attr) {
	w.writeTag(name, attrs, false)
	w.open = append(w.open, name)
}

// Empty writes a self-closing element.
func (w *Writer) Empty(name string, attrs ...Attr) {
	w.writeTag(name, attrs, true)
}

func (w *Writer) writeTag(name string, attrs []Attr, selfClose bool) {
	if w.err != nil {
		return
	}
	w.w.WriteByte('<')
	w.w.WriteString(name)
	for _, a := range attrs {
		w.w.WriteByte(' ')
		w.w.WriteString(a.Name)
		w.w.WriteString(`="`)
		attrEscaper.WriteString(w.w, a.Value)
		w.w.WriteByte('"')
	}
	if selfClose {
		w.w.WriteString("/>")
	} else {
		w.w.WriteByte('>')
	}
	w.setErr(w.w.Flush())
}

// Text writes character data, escaping reserved characters.
func (w *Writer) Text(s string) {
	if w.err != nil {
		return
	}
	textEscaper.WriteString(w.w, s)
	w.setErr(w.w.Flush())
}

// Raw writes a pre-formatted markup fragment verbatim.
// The caller is responsible for well-formedness of the fragment.
func (w *Writer) Raw(s string) {
	if w.err != nil {
		return
	}
	w.w.WriteString(s)
	w.setErr(w.w.Flush())
}

// End writes the closing tag of the innermost open element.
func (w *Writer) End() {
	if len(w.open) == 0 {
		w.setErr(errors.New("svg: End without matching Start"))
		return
	}
	name := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	if w.err != nil {
		return
	}
	w.w.WriteString("</")
	w.w.WriteString(name)
	w.w.WriteByte('>')
	w.setErr(w.w.Flush())
}

// Error reports the first error encountered by the writer, if any.
func (w *Writer) Error() error {
	return w.err
}

// Close flushes the writer and verifies that every element opened with
// [Writer.Start] has been closed.  Close does not close the underlying
// io.Writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.open) > 0 {
		w.setErr(errors.New("svg: unclosed element <" + w.open[len(w.open)-1] + ">"))
		return w.err
	}
	w.setErr(w.w.Flush())
	return w.err
}

func (w *Writer) setErr(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// Number formats a coordinate value using the shortest representation
// which round-trips.
func Number(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// Matrix formats a transformation matrix as an SVG transform value.
func Matrix(m matrix.Matrix) string {
	var b strings.Builder
	b.WriteString("matrix(")
	for i, x := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Number(x))
	}
	b.WriteByte(')')
	return b.String()
}
