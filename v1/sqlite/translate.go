package sqlite

import (
	"regexp"
	"strings"

	"github.com/cipworks/common/v1/dbclient"
)

// Temporal layouts used when rendering parameters for the mapped TEXT
// columns. Lexicographic order of the rendered strings matches chronological
// order, so range predicates keep working.
const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	dateLayout      = "2006-01-02"
)

// typeRule maps one server-side column type to a SQLite storage class.
// Longer temporal forms come first so the bare TIMESTAMP rule cannot leave
// a dangling qualifier behind.
type typeRule struct {
	re   *regexp.Regexp
	repl string
}

var typeRules = []typeRule{
	{regexp.MustCompile(`(?i)\bTIMESTAMP\s+WITH\s+TIME\s+ZONE\b`), "TEXT"},
	{regexp.MustCompile(`(?i)\bTIMESTAMP\s+WITHOUT\s+TIME\s+ZONE\b`), "TEXT"},
	{regexp.MustCompile(`(?i)\bTIMESTAMPTZ\b`), "TEXT"},
	{regexp.MustCompile(`(?i)\bTIMESTAMP\b`), "TEXT"},
	{regexp.MustCompile(`(?i)\bBIGSERIAL\b`), "INTEGER"},
	{regexp.MustCompile(`(?i)\bSERIAL\b`), "INTEGER"},
	{regexp.MustCompile(`(?i)\bBOOLEAN\b`), "INTEGER"},
}

var (
	// tableRefPattern quotes the identifier after data-access keywords so
	// dotted names resolve as one table.
	tableRefPattern = regexp.MustCompile(`(?i)\b(FROM|JOIN|INTO|UPDATE)\s+([A-Za-z_][\w.]*)`)

	// tablePattern handles DDL: TABLE optionally followed by
	// IF [NOT] EXISTS, then the name.
	tablePattern = regexp.MustCompile(`(?i)\b(TABLE)\s+((?:IF\s+(?:NOT\s+)?EXISTS\s+)?)([A-Za-z_][\w.]*)`)

	returningPattern = regexp.MustCompile(`(?i)\bRETURNING\b`)
)

// translate rewrites a query written for the networked engine into SQLite's
// dialect. The rewrite is text-only and best-effort; parameter values never
// pass through it.
func translate(query string) string {
	q := strings.ReplaceAll(query, "%s", "?")

	for _, rule := range typeRules {
		q = rule.re.ReplaceAllString(q, rule.repl)
	}

	q = tableRefPattern.ReplaceAllString(q, "${1} `${2}`")
	q = tablePattern.ReplaceAllString(q, "${1} ${2}`${3}`")

	return q
}

// hasReturning reports whether the query carries a RETURNING clause.
func hasReturning(query string) bool {
	return returningPattern.MatchString(query)
}

// stripReturning removes the trailing RETURNING clause so the statement can
// be re-executed on engines that reject it; the generated id is then read
// from last-insert-rowid.
func stripReturning(query string) string {
	loc := returningPattern.FindStringIndex(query)
	if loc == nil {
		return query
	}
	return strings.TrimRight(query[:loc[0]], " \t\r\n;")
}

// bindValues renders tagged parameters into SQLite driver values: temporal
// parameters become the TEXT layouts above, booleans become 0/1.
func bindValues(params []dbclient.Param) []interface{} {
	if len(params) == 0 {
		return nil
	}
	args := make([]interface{}, len(params))
	for i, p := range params {
		switch p.Kind {
		case dbclient.KindTimestamp:
			args[i] = p.Time.Format(timestampLayout)
		case dbclient.KindDate:
			args[i] = p.Time.Format(dateLayout)
		case dbclient.KindBool:
			if p.B {
				args[i] = int64(1)
			} else {
				args[i] = int64(0)
			}
		default:
			args[i] = p.Native()
		}
	}
	return args
}
