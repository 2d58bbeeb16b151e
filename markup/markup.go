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

// Package markup normalizes the HTML pages of a translated JDK documentation
// archive.
//
// Pages are parsed with the HTML5 parsing algorithm so malformed markup is
// always accepted. The following changes are made to the parsed page:
//  1. The SiteCatalyst metrics script is removed.
//  2. Elements wrapping merged original and translated text
//     (class="merged") are replaced by their children.
//  3. The machine translation notice that follows the page header is moved
//     to the beginning of the page footer.
//
// The page is then rendered as-is, without re-indentation, in the character
// encoding it was read in. Pages without a byte order mark or a meta charset
// declaration are read and written as UTF-8.
package markup

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TrackingScriptSrc is the src of the SiteCatalyst metrics script.
const TrackingScriptSrc = "https://www.oracleimg.com/us/assets/metrics/ora_docs.js"

const (
	mergedClass = "merged"
	noticeStyle = "width:100%"
	footerRole  = "contentinfo"
)

var (
	errParse  = errors.New("parsing html")
	errRender = errors.New("rendering html")
)

// Transform normalizes the HTML page in b and returns the rendered result.
// The encoding of the page is determined from its byte order mark or its meta
// tags and defaults to UTF-8. Characters that cannot be represented in
// that encoding are written as numeric character references.
func Transform(b []byte) ([]byte, error) {
	enc := determineEncoding(b)

	doc, err := html.Parse(transform.NewReader(bytes.NewReader(b), unicode.BOMOverride(enc.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errParse, err)
	}

	Normalize(doc)

	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoding.HTMLEscapeUnsupported(enc.NewEncoder()))
	if err := html.Render(w, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errRender, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", errRender, err)
	}

	return buf.Bytes(), nil
}

// Normalize applies the page changes to the parsed document in place.
func Normalize(doc *html.Node) {
	RemoveTrackingScripts(doc)
	UnwrapMerged(doc)
	MoveNotice(doc)
}

// RemoveTrackingScripts removes every script element that loads the
// SiteCatalyst metrics script. It returns the number of removed elements.
func RemoveTrackingScripts(doc *html.Node) int {
	scripts := findAll(doc, func(n *html.Node) bool {
		return isElement(n, atom.Script) && hasAttr(n, "src", TrackingScriptSrc)
	})
	for _, s := range scripts {
		s.Parent.RemoveChild(s)
	}
	return len(scripts)
}

// UnwrapMerged replaces every element with class="merged" by its children.
// It returns the number of unwrapped elements.
func UnwrapMerged(doc *html.Node) int {
	merged := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasAttr(n, "class", mergedClass)
	})
	// Nested elements are found after their ancestors and are moved up into
	// the ancestor's parent before they are unwrapped themselves.
	for _, n := range merged {
		unwrap(n)
	}
	return len(merged)
}

// MoveNotice moves the machine translation notice to be the first child of
// the page footer. The notice is the first div with style="width:100%" that
// is preceded by a header sibling. The footer is the first footer with
// role="contentinfo". It returns false if either is missing.
func MoveNotice(doc *html.Node) bool {
	notice := findFirst(doc, isNotice)
	if notice == nil {
		return false
	}
	footer := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, atom.Footer) && hasAttr(n, "role", footerRole)
	})
	if footer == nil || contains(notice, footer) {
		return false
	}

	notice.Parent.RemoveChild(notice)
	footer.InsertBefore(notice, footer.FirstChild)
	return true
}

func isNotice(n *html.Node) bool {
	if !isElement(n, atom.Div) || !hasAttr(n, "style", noticeStyle) {
		return false
	}
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if isElement(s, atom.Header) {
			return true
		}
	}
	return false
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
}
