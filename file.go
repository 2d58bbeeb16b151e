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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const normalizedSuffix = "-normalized.zip"

// DefaultOutputPath returns the default output path for the archive at
// inPath. A trailing ".zip" is replaced with "-normalized.zip". Otherwise,
// "-normalized.zip" is appended.
func DefaultOutputPath(inPath string) string {
	return strings.TrimSuffix(inPath, ".zip") + normalizedSuffix
}

// NormalizeFile normalizes the archive at inPath and writes the result to
// outPath. The output is written to a temporary file in the same directory
// and only replaces outPath if all entries were written successfully.
func NormalizeFile(inPath, outPath string, opts *Options) (*Stats, error) {
	zr, err := zip.OpenReader(inPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", ErrNormalize, inPath, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating %q: %w", ErrNormalize, outPath, err)
	}

	stats, err := writeArchive(&zr.Reader, tmp, opts)
	if err == nil {
		err = finish(tmp, outPath)
	}
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, err
	}

	return stats, nil
}

// writeArchive normalizes zr into w. The zip writer is always closed.
func writeArchive(zr *zip.Reader, w io.Writer, opts *Options) (*Stats, error) {
	zw := zip.NewWriter(w)
	stats, err := Normalize(zr, zw, opts)
	if cerr := zw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: writing archive: %w", ErrNormalize, cerr)
	}
	return stats, err
}

// finish flushes tmp to disk and moves it to path.
func finish(tmp *os.File, path string) error {
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrNormalize, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %q: %w", ErrNormalize, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %q: %w", ErrNormalize, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrNormalize, err)
	}
	return nil
}
