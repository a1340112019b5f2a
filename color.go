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

	pdfcolor "seehuhn.de/go/pdf/graphics/color"
)

// svgColor converts a PDF color to a CSS color value for use in SVG fill
// and stroke attributes.  Color spaces which cannot be converted fall back
// to black.
func svgColor(c pdfcolor.Color) string {
	if c == nil {
		return "#000"
	}

	vals, _, _ := pdfcolor.Operator(c)
	switch c.ColorSpace().Family() {
	case pdfcolor.FamilyDeviceGray, pdfcolor.FamilyCalGray:
		g := channel(vals[0])
		return fmt.Sprintf("rgb(%d,%d,%d)", g, g, g)
	case pdfcolor.FamilyDeviceRGB, pdfcolor.FamilyCalRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)",
			channel(vals[0]), channel(vals[1]), channel(vals[2]))
	case pdfcolor.FamilyDeviceCMYK:
		c, m, y, k := clamp(vals[0]), clamp(vals[1]), clamp(vals[2]), clamp(vals[3])
		return fmt.Sprintf("rgb(%d,%d,%d)",
			channel((1-c)*(1-k)), channel((1-m)*(1-k)), channel((1-y)*(1-k)))
	}
	return "#000"
}

func channel(x float64) int {
	return int(clamp(x)*255 + 0.5)
}

func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
