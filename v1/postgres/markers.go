package postgres

import (
	"strconv"
	"strings"
)

// numberMarkers rewrites %s positional markers into the $1..$n form pgx
// expects. Only the query text is rewritten; parameter values are bound
// separately and never pass through here.
func numberMarkers(query string) string {
	if !strings.Contains(query, "%s") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for {
		i := strings.Index(query, "%s")
		if i < 0 {
			b.WriteString(query)
			break
		}
		n++
		b.WriteString(query[:i])
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
		query = query[i+2:]
	}
	return b.String()
}
