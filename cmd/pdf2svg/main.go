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

// Pdf2svg converts PDF pages to SVG files with a selectable text layer.
//
// Usage:
//
//	pdf2svg [options] file.pdf
//
// By default every page is converted, using file names derived from the
// input name.  Use --page to convert a single page, and --output to control
// the output file names; a "%d" in the output name is replaced by the page
// number.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/pdf2svg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pdf2svg:", err)
		os.Exit(1)
	}
}

func run() error {
	password := pflag.StringP("password", "p", "", "password for encrypted files")
	pageNo := pflag.IntP("page", "n", 0, "convert only the given page (1-based)")
	output := pflag.StringP("output", "o", "", "output file name, %d is replaced by the page number")
	verbose := pflag.BoolP("verbose", "v", false, "print diagnostic messages")
	pflag.Parse()

	args := pflag.Args()
	if len(args) != 1 {
		return errors.New("usage: pdf2svg [options] file.pdf")
	}
	inName := args[0]

	if *verbose {
		pdf2svg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var tryPasswd pdf.ReadPwdFunc
	if *password != "" {
		pw := *password
		tryPasswd = func(ID []byte, try int) string {
			if try > 0 {
				return ""
			}
			return pw
		}
	}

	fd, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer fd.Close()
	fi, err := fd.Stat()
	if err != nil {
		return err
	}
	r, err := pdf.NewReader(fd, fi.Size(), tryPasswd)
	if err != nil {
		return err
	}

	c := pdf2svg.NewConverter(r)

	base := strings.TrimSuffix(filepath.Base(inName), filepath.Ext(inName))

	if *pageNo > 0 {
		_, pageDict, err := pagetree.GetPage(r, *pageNo-1)
		if err != nil {
			return fmt.Errorf("page %d: %w", *pageNo, err)
		}
		name := *output
		if name == "" {
			name = base + ".svg"
		} else if strings.Contains(name, "%") {
			name = fmt.Sprintf(name, *pageNo)
		}
		return writePage(c, pageDict, name)
	}

	pattern := *output
	if pattern == "" {
		pattern = base + "-%d.svg"
	}
	if !strings.Contains(pattern, "%") {
		numPages, err := pagetree.NumPages(r)
		if err != nil {
			return err
		}
		if numPages > 1 {
			return fmt.Errorf("%d pages but output name %q has no %%d",
				numPages, pattern)
		}
	}

	return c.ConvertDocument(func(pageNo int) (io.WriteCloser, error) {
		name := pattern
		if strings.Contains(name, "%") {
			name = fmt.Sprintf(name, pageNo)
		}
		return os.Create(name)
	})
}

func writePage(c *pdf2svg.Converter, pageDict pdf.Object, name string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	err = c.ConvertPage(out, pageDict)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
