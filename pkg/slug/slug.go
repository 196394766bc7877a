// Copyright (c) 2026 Komira. All rights reserved.

// Package slug turns arbitrary Unicode titles into ASCII URL slugs, the
// public identifiers for manga ("solo-leveling"). Accents are stripped
// rather than escaped so slugs stay readable.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and drops the combining
// marks, so é becomes e.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// multiHyphen collapses hyphen runs left by adjacent separators.
var multiHyphen = regexp.MustCompile(`-{2,}`)

// From converts a Unicode string into a URL-safe slug: accents removed,
// lowercased, every non-alphanumeric run folded into a single hyphen,
// no leading or trailing hyphen.
func From(s string) string {
	ascii, _, _ := transform.String(stripMarks, s)
	ascii = strings.ToLower(ascii)

	ascii = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, ascii)

	ascii = multiHyphen.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}
