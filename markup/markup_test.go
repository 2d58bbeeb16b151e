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

package markup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/k3a/html2text"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/japanese"
)

const trackingScript = `<script src="https://www.oracleimg.com/us/assets/metrics/ora_docs.js"></script>`

func TestTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "move notice",
			input:    `<header></header><div style="width:100%">notice</div><footer role="contentinfo"></footer>`,
			expected: `<html><head></head><body><header></header><footer role="contentinfo"><div style="width:100%">notice</div></footer></body></html>`,
		},
		{
			name:     "move notice before footer content",
			input:    `<header>h</header><p>p</p><div style="width:100%">notice</div><footer role="contentinfo"><p>copyright</p></footer>`,
			expected: `<html><head></head><body><header>h</header><p>p</p><footer role="contentinfo"><div style="width:100%">notice</div><p>copyright</p></footer></body></html>`,
		},
		{
			name:     "only first notice moved",
			input:    `<header></header><div style="width:100%">1</div><div style="width:100%">2</div><footer role="contentinfo"></footer>`,
			expected: `<html><head></head><body><header></header><div style="width:100%">2</div><footer role="contentinfo"><div style="width:100%">1</div></footer></body></html>`,
		},
		{
			name:     "notice without header",
			input:    `<div style="width:100%">notice</div><footer role="contentinfo"></footer>`,
			expected: `<html><head></head><body><div style="width:100%">notice</div><footer role="contentinfo"></footer></body></html>`,
		},
		{
			name:     "notice not a header sibling",
			input:    `<header></header><main><div style="width:100%">notice</div></main><footer role="contentinfo"></footer>`,
			expected: `<html><head></head><body><header></header><main><div style="width:100%">notice</div></main><footer role="contentinfo"></footer></body></html>`,
		},
		{
			name:     "notice without footer",
			input:    `<header></header><div style="width:100%">notice</div><footer></footer>`,
			expected: `<html><head></head><body><header></header><div style="width:100%">notice</div><footer></footer></body></html>`,
		},
		{
			name:     "notice style mismatch",
			input:    `<header></header><div style="width: 100%">notice</div><footer role="contentinfo"></footer>`,
			expected: `<html><head></head><body><header></header><div style="width: 100%">notice</div><footer role="contentinfo"></footer></body></html>`,
		},
		{
			name:     "remove tracking scripts",
			input:    `<html><head>` + trackingScript + `<script src="other.js"></script></head><body>` + trackingScript + `<p>x</p></body></html>`,
			expected: `<html><head><script src="other.js"></script></head><body><p>x</p></body></html>`,
		},
		{
			name:     "tracking script with query kept",
			input:    `<script src="https://www.oracleimg.com/us/assets/metrics/ora_docs.js?v=1"></script>`,
			expected: `<html><head><script src="https://www.oracleimg.com/us/assets/metrics/ora_docs.js?v=1"></script></head><body></body></html>`,
		},
		{
			name:     "unwrap merged",
			input:    `<p><span class="merged">a<b>b</b></span><span class="merged"><span class="merged">c</span></span><span class="Merged">d</span></p>`,
			expected: `<html><head></head><body><p>a<b>b</b>c<span class="Merged">d</span></p></body></html>`,
		},
		{
			name:     "unwrap merged with other classes",
			input:    `<p><span class="merged other">a</span></p>`,
			expected: `<html><head></head><body><p><span class="merged other">a</span></p></body></html>`,
		},
		{
			name:     "doctype preserved",
			input:    `<!DOCTYPE html><html lang="ja"><head><title>t</title></head><body></body></html>`,
			expected: `<!DOCTYPE html><html lang="ja"><head><title>t</title></head><body></body></html>`,
		},
		{
			name:     "malformed",
			input:    `<p>unclosed<div>text`,
			expected: `<html><head></head><body><p>unclosed</p><div>text</div></body></html>`,
		},
		{
			name:     "utf-8 byte order mark",
			input:    "\xef\xbb\xbf<p>日本語</p>",
			expected: `<html><head></head><body><p>日本語</p></body></html>`,
		},
		{
			name:     "undeclared encoding defaults to utf-8",
			input:    `<p>&#x65E5;</p>`,
			expected: `<html><head></head><body><p>日</p></body></html>`,
		},
		{
			name:     "undeclared invalid utf-8 replaced",
			input:    "<p>\xff</p>",
			expected: "<html><head></head><body><p>\ufffd</p></body></html>",
		},
		{
			name:     "unsupported characters escaped",
			input:    `<meta charset="windows-1252"><p>&#x65E5;</p>`,
			expected: `<html><head><meta charset="windows-1252"/></head><body><p>&#26085;</p></body></html>`,
		},
		{
			name:     "unknown meta charset ignored",
			input:    `<meta charset="x-unknown"><p>&#x65E5;</p>`,
			expected: `<html><head><meta charset="x-unknown"/></head><body><p>日</p></body></html>`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transform([]byte(test.input))
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if diff := cmp.Diff(test.expected, string(got)); diff != "" {
				t.Fatalf("Transform (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestTransform_shiftJIS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta string
	}{
		{
			name: "meta charset",
			meta: `<meta charset="Shift_JIS">`,
		},
		{
			name: "meta http-equiv",
			meta: `<meta http-equiv="Content-Type" content="text/html; charset=Shift_JIS">`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			enc := japanese.ShiftJIS.NewEncoder()
			input, err := enc.Bytes([]byte(`<html><head>` + test.meta + `</head><body><p><span class="merged">日本語</span></p></body></html>`))
			if err != nil {
				t.Fatalf("encoding input: %v", err)
			}
			meta := strings.TrimSuffix(test.meta, ">") + "/>"
			expected, err := enc.Bytes([]byte(`<html><head>` + meta + `</head><body><p>日本語</p></body></html>`))
			if err != nil {
				t.Fatalf("encoding expected: %v", err)
			}

			got, err := Transform(input)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Fatalf("Transform (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestTransform_idempotent(t *testing.T) {
	t.Parallel()

	input := []byte(`<header></header>` + trackingScript + trackingScript +
		`<div style="width:100%">notice</div><p><span class="merged">text</span></p>` +
		`<footer role="contentinfo"></footer>`)

	once, err := Transform(input)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	doc, err := html.Parse(bytes.NewReader(once))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	if got := RemoveTrackingScripts(doc); got != 0 {
		t.Errorf("RemoveTrackingScripts: removed %d scripts after Transform", got)
	}
	if got := UnwrapMerged(doc); got != 0 {
		t.Errorf("UnwrapMerged: unwrapped %d elements after Transform", got)
	}

	twice, err := Transform(once)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if diff := cmp.Diff(string(once), string(twice)); diff != "" {
		t.Fatalf("Transform (-once, +twice):\n%s", diff)
	}
}

// TestUnwrapMerged_text tests that unwrapping merged elements does not change
// the visible text of a page.
func TestUnwrapMerged_text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "inline",
			input: `<p>Hello <span class="merged">wor<b>ld</b></span>!</p>`,
		},
		{
			name:  "nested",
			input: `<p><span class="merged">The <span class="merged">quick</span> brown</span> fox</p>`,
		},
		{
			name:  "multiple paragraphs",
			input: `<p><span class="merged">first</span></p><p>second <span class="merged">third</span></p>`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			doc, err := html.Parse(strings.NewReader(test.input))
			if err != nil {
				t.Fatalf("html.Parse: %v", err)
			}
			var before strings.Builder
			if err := html.Render(&before, doc); err != nil {
				t.Fatalf("html.Render: %v", err)
			}

			if got := UnwrapMerged(doc); got == 0 {
				t.Fatalf("UnwrapMerged: no elements unwrapped")
			}
			var after strings.Builder
			if err := html.Render(&after, doc); err != nil {
				t.Fatalf("html.Render: %v", err)
			}

			want := html2text.HTML2Text(before.String())
			got := html2text.HTML2Text(after.String())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("visible text (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMoveNotice_footerInsideNotice(t *testing.T) {
	t.Parallel()

	doc, err := html.Parse(strings.NewReader(
		`<header></header><div style="width:100%"><footer role="contentinfo"></footer></div>`))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}

	if MoveNotice(doc) {
		t.Fatalf("MoveNotice: moved notice into its own descendant")
	}
}
