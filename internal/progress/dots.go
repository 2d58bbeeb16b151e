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

// Package progress reports the progress of long running operations.
package progress

import (
	"io"
)

// DefaultEvery is the default number of entries per progress dot.
const DefaultEvery = 100

// Dots writes a single '.' to its writer every Every processed entries.
type Dots struct {
	// W is the progress output. Progress is not written if W is nil.
	W io.Writer

	// Every is the number of entries per dot. DefaultEvery is used if Every
	// is zero or negative.
	Every int

	n int
}

// Done records that an entry has been processed.
func (d *Dots) Done() {
	d.n++

	every := d.Every
	if every <= 0 {
		every = DefaultEvery
	}
	if d.W == nil || d.n%every != 0 {
		return
	}

	// NOTE: progress output is cosmetic so write errors are ignored.
	_, _ = d.W.Write([]byte{'.'})
}
