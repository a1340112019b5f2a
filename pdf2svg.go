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
	"fmt"
	"io"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/reader"

	"seehuhn.de/go/pdf2svg/svg"
)

// A Converter renders the pages of one PDF document as SVG.
//
// A Converter must not be used from more than one goroutine at a time.
type Converter struct {
	Reader *reader.Reader
}

// NewConverter creates a Converter for the document accessed through r.
func NewConverter(r pdf.Getter) *Converter {
	return &Converter{
		Reader: reader.New(r, nil),
	}
}

// ConvertPage renders one page as a complete SVG document.
//
// If an error is returned, the output written so far is incomplete and must
// be discarded.
func (c *Converter) ConvertPage(out io.Writer, pageObj pdf.Object) error {
	pageDict, err := pdf.GetDictTyped(c.Reader.R, pageObj, "Page")
	if err != nil {
		return err
	}

	llx, lly, urx, ury, err := c.mediaBox(pageDict)
	if err != nil {
		return err
	}
	width := urx - llx
	height := ury - lly

	w := svg.NewWriter(out)
	w.Start("svg",
		svg.Attr{Name: "xmlns", Value: "http://www.w3.org/2000/svg"},
		svg.Attr{Name: "version", Value: "1.1"},
		svg.Attr{Name: "width", Value: svg.Number(width)},
		svg.Attr{Name: "height", Value: svg.Number(height)},
		svg.Attr{Name: "viewBox", Value: "0 0 " + svg.Number(width) + " " + svg.Number(height)})

	dev := newRenderer(c.Reader, w)
	c.Reader.Reset()
	dev.setup()

	// Flip PDF user space (y up, origin at the lower left corner of the
	// MediaBox) into SVG space (y down, origin at the top left).
	base := matrix.Matrix{1, 0, 0, -1, -llx, ury}
	if err := c.Reader.ParsePage(pageObj, base); err != nil {
		return fmt.Errorf("parsing page content: %w", err)
	}

	if err := dev.finish(); err != nil {
		return err
	}
	w.End() // </svg>
	return w.Close()
}

func (c *Converter) mediaBox(pageDict pdf.Dict) (llx, lly, urx, ury float64, err error) {
	box, err := pdf.GetArray(c.Reader.R, pageDict["MediaBox"])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if len(box) < 4 {
		return 0, 0, 0, 0, fmt.Errorf("missing or invalid MediaBox")
	}

	var coords [4]float64
	for i := range coords {
		num, err := pdf.GetNumber(c.Reader.R, box[i])
		if err != nil {
			return 0, 0, 0, 0, err
		}
		coords[i] = float64(num)
	}
	llx, lly, urx, ury = coords[0], coords[1], coords[2], coords[3]
	if urx <= llx || ury <= lly {
		return 0, 0, 0, 0, fmt.Errorf("degenerate MediaBox [%g %g %g %g]",
			llx, lly, urx, ury)
	}
	return llx, lly, urx, ury, nil
}

// ConvertDocument renders every page of the document.  For each page,
// open is called with the 1-based page number and must return the writer
// for that page's SVG document; the writer is closed after the page has
// been rendered.
func (c *Converter) ConvertDocument(open func(pageNo int) (io.WriteCloser, error)) error {
	numPages, err := pagetree.NumPages(c.Reader.R)
	if err != nil {
		return err
	}

	for i := 0; i < numPages; i++ {
		_, pageDict, err := pagetree.GetPage(c.Reader.R, i)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}

		out, err := open(i + 1)
		if err != nil {
			return err
		}
		err = c.ConvertPage(out, pageDict)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return nil
}
