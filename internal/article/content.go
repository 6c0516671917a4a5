// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// symbolPattern matches everything except letters, digits, whitespace and
// the CJK sentence punctuation kept in excerpts.
var symbolPattern = regexp.MustCompile(`[^\p{L}\p{N}，。！？：；\s]+`)

// PlainText reduces markdown to searchable text: embedded HTML is dropped
// (its text kept), markdown symbols become spaces and whitespace runs
// collapse to a single space.
func PlainText(markdown string) string {
	text := stripHTML(markdown)
	text = symbolPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns the first maxRunes runes of plain.
func Excerpt(plain string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	n := 0
	for i := range plain {
		if n == maxRunes {
			return plain[:i]
		}
		n++
	}
	return plain
}

// stripHTML returns the text nodes of s separated by spaces, so adjacent
// block elements do not run together.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()

	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			if goquery.NodeName(node) == "#text" {
				b.WriteString(node.Text())
				b.WriteByte(' ')
				return
			}
			walk(node)
		})
	}
	walk(doc.Selection)
	return b.String()
}
