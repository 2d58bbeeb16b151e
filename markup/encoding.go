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
	"mime"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// prescanLen is the number of bytes searched for a meta charset declaration.
const prescanLen = 1024

// determineEncoding returns the encoding of the HTML page in b. A byte order
// mark takes precedence over a meta declaration. Pages with neither are read
// as UTF-8.
func determineEncoding(b []byte) encoding.Encoding {
	if enc, _, certain := charset.DetermineEncoding(b, ""); certain {
		return enc
	}
	if enc := metaEncoding(b); enc != nil {
		return enc
	}
	return unicode.UTF8
}

// metaEncoding returns the encoding declared by the first meta element with a
// known charset in the beginning of b, or nil.
func metaEncoding(b []byte) encoding.Encoding {
	if len(b) > prescanLen {
		b = b[:prescanLen]
	}

	z := html.NewTokenizer(bytes.NewReader(b))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Meta {
				continue
			}
			if enc, _ := charset.Lookup(metaCharset(tok.Attr)); enc != nil {
				return enc
			}
		default:
		}
	}
}

// metaCharset returns the charset label of a meta element's attributes.
func metaCharset(attrs []html.Attribute) string {
	var httpEquiv, content string
	for _, a := range attrs {
		switch a.Key {
		case "charset":
			return strings.TrimSpace(a.Val)
		case "http-equiv":
			httpEquiv = a.Val
		case "content":
			content = a.Val
		default:
		}
	}
	if !strings.EqualFold(httpEquiv, "content-type") {
		return ""
	}
	_, params, err := mime.ParseMediaType(content)
	if err != nil {
		return ""
	}
	return params["charset"]
}
