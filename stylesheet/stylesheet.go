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

// Package stylesheet rewrites the font-family declarations found in the
// stylesheets of the JDK documentation.
//
// The JDK documentation stylesheets declare the DejaVu font families with a
// fixed set of fallbacks. Those declarations are matched literally, allowing
// any number of spaces after the colon and after each comma.
package stylesheet

import (
	"fmt"
	"regexp"
)

var (
	proportionalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`font-family: *'DejaVu Sans', *Arial, *Helvetica, *sans-serif;`),
		regexp.MustCompile(`font-family: *'DejaVu Serif', *Georgia, *"Times New Roman", *Times, *serif;`),
	}

	monospacedPattern = regexp.MustCompile(`font-family: *'DejaVu Sans Mono', *monospace;`)
)

// Override is a font override. The zero value is an absent override which
// requests no change. An override which is set but empty requests that the
// matched declaration be removed so that the browser's default font is used.
type Override struct {
	font string
	set  bool
}

// Strip returns an override that removes the matched font-family
// declarations.
func Strip() Override {
	return Override{set: true}
}

// Replace returns an override that replaces the matched font-family
// declarations with the given font. An empty font is equivalent to Strip.
func Replace(font string) Override {
	return Override{font: font, set: true}
}

// IsSet returns true if the override was specified.
func (o Override) IsSet() bool {
	return o.set
}

// String returns a string representation of the Override.
func (o Override) String() string {
	switch {
	case !o.set:
		return "<unset>"
	case o.font == "":
		return "<strip>"
	default:
		return o.font
	}
}

// declaration returns the text that replaces a matched declaration.
func (o Override) declaration() []byte {
	if o.font == "" {
		return nil
	}
	return []byte(fmt.Sprintf("font-family: %s;", o.font))
}

// Rewrite applies the overrides to the stylesheet text. Every occurrence of
// the proportional declarations is rewritten if proportional is set, and
// every occurrence of the monospaced declaration if monospaced is set.
func Rewrite(css string, proportional, monospaced Override) string {
	return string(Transform([]byte(css), proportional, monospaced))
}

// Transform is like Rewrite but operates on the raw UTF-8 stylesheet bytes.
// Bytes that are not valid UTF-8 are passed through unchanged.
func Transform(b []byte, proportional, monospaced Override) []byte {
	if proportional.IsSet() {
		repl := proportional.declaration()
		for _, p := range proportionalPatterns {
			b = p.ReplaceAllLiteral(b, repl)
		}
	}

	if monospaced.IsSet() {
		b = monospacedPattern.ReplaceAllLiteral(b, monospaced.declaration())
	}

	return b
}
