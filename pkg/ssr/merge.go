package ssr

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// AttrPlaceholder returns the marker an attribute signal renders as during
// server rendering. InsertTemplates replaces it with the attribute value of
// each element occurrence.
func AttrPlaceholder(name string) string {
	return "{{attr:" + name + "}}"
}

var placeholderRE = regexp.MustCompile(`\{\{attr:([^{}\s]+)\}\}`)

// InsertTemplates inserts componentHTML as the leading content of every
// <tag> element in pageHTML. Attribute placeholders in componentHTML are
// filled, escaped, from the attributes of the occurrence they are inserted
// into; attributes the occurrence lacks become empty. The rest of pageHTML
// is passed through byte for byte.
func InsertTemplates(tag, componentHTML, pageHTML string) (string, error) {
	tag = strings.ToLower(tag)
	z := html.NewTokenizer(strings.NewReader(pageHTML))

	var out bytes.Buffer
	out.Grow(len(pageHTML) + len(componentHTML))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return out.String(), nil
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		// Raw is only valid until the next call into the tokenizer.
		raw = append([]byte(nil), raw...)
		tok := z.Token()
		if tok.Data != tag {
			out.Write(raw)
			continue
		}

		content := fillPlaceholders(componentHTML, tok.Attr)
		if tt == html.SelfClosingTagToken {
			out.Write(bytes.TrimSuffix(bytes.TrimRight(bytes.TrimSuffix(raw, []byte(">")), " "), []byte("/")))
			out.WriteByte('>')
			out.WriteString(content)
			out.WriteString("</" + tag + ">")
			continue
		}
		out.Write(raw)
		out.WriteString(content)
	}
}

func fillPlaceholders(s string, attrs []html.Attribute) string {
	return placeholderRE.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.ToLower(placeholderRE.FindStringSubmatch(m)[1])
		for _, a := range attrs {
			if a.Key == name {
				return html.EscapeString(a.Val)
			}
		}
		return ""
	})
}
