// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package normalizer

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ianlewis/jdkdoc-normalizer/internal/progress"
	"github.com/ianlewis/jdkdoc-normalizer/markup"
	"github.com/ianlewis/jdkdoc-normalizer/stylesheet"
)

// ErrNormalize is the parent error for all archive normalization errors.
var ErrNormalize = errors.New("normalize")

// Options are options for normalizing an archive.
type Options struct {
	// ProportionalFont overrides the proportional font-family declarations
	// in stylesheets.
	ProportionalFont stylesheet.Override

	// MonospacedFont overrides the monospaced font-family declarations in
	// stylesheets.
	MonospacedFont stylesheet.Override

	// Progress receives a '.' after every 100 entries. Progress is not
	// written if nil.
	Progress io.Writer
}

// EntryKind is the kind of transform applied to an archive entry.
type EntryKind int

const (
	// KindCopy entries are copied unchanged.
	KindCopy EntryKind = iota

	// KindHTML entries are normalized HTML pages.
	KindHTML

	// KindCSS entries are stylesheets with font overrides applied.
	KindCSS
)

// String returns a string representation of the EntryKind.
func (k EntryKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindCSS:
		return "css"
	default:
		return "copy"
	}
}

// Classify returns the kind of transform applied to the entry with the given
// name. Stylesheets are only transformed if a font override is set.
func (o *Options) Classify(name string) EntryKind {
	switch {
	case strings.HasSuffix(name, ".html"):
		return KindHTML
	case strings.HasSuffix(name, ".css") && o != nil &&
		(o.ProportionalFont.IsSet() || o.MonospacedFont.IsSet()):
		return KindCSS
	default:
		return KindCopy
	}
}

// Stats are the number of entries processed by kind.
type Stats struct {
	HTML   int
	CSS    int
	Copied int
}

// Total returns the total number of processed entries.
func (s *Stats) Total() int {
	return s.HTML + s.CSS + s.Copied
}

func (s *Stats) add(k EntryKind) {
	switch k {
	case KindHTML:
		s.HTML++
	case KindCSS:
		s.CSS++
	default:
		s.Copied++
	}
}

// Normalize writes every entry of zr to zw in order. Processing stops at the
// first error. The caller is responsible for closing zw.
func Normalize(zr *zip.Reader, zw *zip.Writer, opts *Options) (*Stats, error) {
	if opts == nil {
		opts = &Options{}
	}

	stats := &Stats{}
	dots := &progress.Dots{W: opts.Progress}
	for _, f := range zr.File {
		kind := opts.Classify(f.Name)

		var err error
		switch kind {
		case KindHTML:
			err = transformEntry(zw, f, markup.Transform)
		case KindCSS:
			err = transformEntry(zw, f, func(b []byte) ([]byte, error) {
				return stylesheet.Transform(b, opts.ProportionalFont, opts.MonospacedFont), nil
			})
		default:
			err = copyEntry(zw, f)
		}
		if err != nil {
			return stats, fmt.Errorf("%w: %q: %w", ErrNormalize, f.Name, err)
		}

		stats.add(kind)
		dots.Done()
	}

	return stats, nil
}

// Extra field header IDs the writer generates itself.
const (
	zip64ExtraID   = 0x0001
	extTimeExtraID = 0x5455
)

// An extra field starts with a 2-byte ID and a 2-byte data size.
const (
	extraHeaderLen     = 4
	extraHeaderSizeOff = 2
)

// newHeader returns a header for writing f with new content. The timestamp
// is carried in the same form as the source entry so that an entry with only
// an MS-DOS date and time does not gain an extended timestamp.
func newHeader(f *zip.File) *zip.FileHeader {
	extra, hasExtTime := splitExtra(f.Extra)
	fh := &zip.FileHeader{
		Name:           f.Name,
		Comment:        f.Comment,
		NonUTF8:        f.NonUTF8,
		CreatorVersion: f.CreatorVersion,
		Method:         f.Method,
		Extra:          extra,
		ExternalAttrs:  f.ExternalAttrs,
	}
	if hasExtTime {
		fh.Modified = f.Modified
	} else {
		//nolint:staticcheck // The legacy fields keep the MS-DOS time as-is.
		fh.ModifiedDate, fh.ModifiedTime = f.ModifiedDate, f.ModifiedTime
	}
	return fh
}

// splitExtra returns the extra fields of a source entry without the fields
// the writer generates, and whether an extended timestamp was present.
// Malformed trailing data is dropped.
func splitExtra(extra []byte) ([]byte, bool) {
	var kept []byte
	var hasExtTime bool
	for len(extra) >= extraHeaderLen {
		id := binary.LittleEndian.Uint16(extra)
		size := int(binary.LittleEndian.Uint16(extra[extraHeaderSizeOff:]))
		if len(extra) < extraHeaderLen+size {
			break
		}
		field := extra[:extraHeaderLen+size]
		extra = extra[extraHeaderLen+size:]

		switch id {
		case extTimeExtraID:
			hasExtTime = true
		case zip64ExtraID:
		default:
			kept = append(kept, field...)
		}
	}
	return kept, hasExtTime
}

func transformEntry(zw *zip.Writer, f *zip.File, fn func([]byte) ([]byte, error)) error {
	w, err := zw.CreateHeader(newHeader(f))
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry: %w", err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading entry: %w", err)
	}

	b, err = fn(b)
	if err != nil {
		return err
	}

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

// copyEntry copies the compressed data of f to zw as-is.
func copyEntry(zw *zip.Writer, f *zip.File) error {
	if strings.HasSuffix(f.Name, "/") {
		// Directories have no data. Data descriptor flags etc. are normalized
		// by the writer.
		if _, err := zw.CreateHeader(newHeader(f)); err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
		return nil
	}

	fh := f.FileHeader
	w, err := zw.CreateRaw(&fh)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	r, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("opening entry: %w", err)
	}

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying entry: %w", err)
	}
	return nil
}
