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

package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Entry is a test archive entry.
type Entry struct {
	Name string
	Data []byte

	// Method is the compression method. Defaults to zip.Deflate.
	Method uint16

	// Modified is the modification time. Defaults to a fixed time.
	Modified time.Time

	// DOSDate and DOSTime, if either is set, are written as the entry's
	// MS-DOS date and time instead of Modified. No extended timestamp is
	// written.
	DOSDate uint16
	DOSTime uint16

	// Extra is the extra field data written to the entry.
	Extra []byte
}

// Modified is the default modification time of test entries.
var Modified = time.Date(2024, time.March, 19, 12, 30, 0, 0, time.UTC)

// MakeZip creates a test zip archive.
func MakeZip(t *testing.T, entries []*Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		method := e.Method
		if method == 0 && e.Name != "" && e.Name[len(e.Name)-1] != '/' {
			method = zip.Deflate
		}
		modified := e.Modified
		if modified.IsZero() {
			modified = Modified
		}

		fh := &zip.FileHeader{
			Name:   e.Name,
			Method: method,
			Extra:  append([]byte(nil), e.Extra...),
		}
		if e.DOSDate != 0 || e.DOSTime != 0 {
			//nolint:staticcheck // Entries without an extended timestamp.
			fh.ModifiedDate, fh.ModifiedTime = e.DOSDate, e.DOSTime
		} else {
			fh.Modified = modified
		}

		w, err := zw.CreateHeader(fh)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

// MakeTempZip creates a test zip archive in a temporary directory and
// returns its path.
func MakeTempZip(t *testing.T, name string, entries []*Entry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, MakeZip(t, entries), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ReadZip reads all entries of the zip archive.
func ReadZip(t *testing.T, b []byte) []*Entry {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}

	var entries []*Entry
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries = append(entries, &Entry{
			Name:     f.Name,
			Data:     data,
			Method:   f.Method,
			Modified: f.Modified.UTC(),
		})
	}

	return entries
}

// ReadTempZip reads all entries of the zip archive at path.
func ReadTempZip(t *testing.T, path string) []*Entry {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return ReadZip(t, b)
}
