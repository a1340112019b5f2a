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

package textlayer

import "strings"

// Family extracts a CSS font family name from a PDF font name.
//
// Subset-tagged names like "ABCDEF+Helvetica-Bold" lose the tag up to and
// including the first "+", and a style suffix after the last "-" is removed.
// A name consisting only of a style suffix, like "-Bold", is returned
// unchanged.
func Family(fontName string) string {
	name := fontName
	if idx := strings.IndexByte(name, '+'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '-'); idx > 0 {
		name = name[:idx]
	}
	return name
}
