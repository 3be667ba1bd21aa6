// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/campus-events/internal/model"
)

// query matches events by name, description and location, ignoring case
// and diacritics.
type query struct {
	terms []string
}

func newQuery(q string) query {
	return query{terms: strings.Fields(fold(q))}
}

func (q query) matches(e model.Event) bool {
	if len(q.terms) == 0 {
		return true
	}
	haystack := fold(e.Name + " " + e.Description + " " + e.Location)
	for _, t := range q.terms {
		if !strings.Contains(haystack, t) {
			return false
		}
	}
	return true
}

// fold strips combining marks and case-folds s.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// Casers are stateful, so each call gets its own.
	return cases.Fold().String(out)
}
