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

// Package pdf2svg renders PDF pages as SVG documents.
//
// Page graphics and glyph outlines become ordinary SVG path elements.  In
// addition, each page gets an invisible text layer: zero-opacity text
// elements which reproduce the position of every character on the page, so
// that text in the generated SVG can be selected, copied and searched.
//
// The sub-package textlayer implements the text layer synthesis, and the
// sub-package svg the streaming markup writer.  The command pdf2svg in
// cmd/pdf2svg wraps the package as a command line tool.
package pdf2svg
