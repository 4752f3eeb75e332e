// Package search parses structured record queries into filter predicates.
//
// A query is a space-separated list of terms. A term with a field prefix
// constrains one record field; anything else is matched as a case-insensitive
// substring of the record's id, title, owner and tags:
//
//	status:open priority:<2 category:infra cert
//
// Numeric fields (priority, value) accept <, <=, >, >= and plain equality.
// All terms must match (conjunction).
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// comparison operators for numeric clauses, longest first so "<=" wins over
// "<" when scanning.
var numericOps = []string{"<=", ">=", "<", ">"}

type clause struct {
	field string
	op    string
	text  string
	num   float64
}

// Query is a parsed record query.
type Query struct {
	raw     string
	terms   []string
	clauses []clause
}

// Raw returns the original query string.
func (q Query) Raw() string { return q.raw }

// IsEmpty reports whether the query constrains anything.
func (q Query) IsEmpty() bool { return len(q.terms) == 0 && len(q.clauses) == 0 }

// Parse parses a query string. A blank input yields an empty query matching
// everything.
func Parse(input string) (Query, error) {
	q := Query{raw: strings.TrimSpace(input)}
	for _, tok := range strings.Fields(q.raw) {
		field, rest, ok := strings.Cut(tok, ":")
		if !ok {
			q.terms = append(q.terms, strings.ToLower(tok))
			continue
		}
		c, err := parseClause(strings.ToLower(field), rest)
		if err != nil {
			return Query{}, err
		}
		q.clauses = append(q.clauses, c)
	}
	return q, nil
}

func parseClause(field, rest string) (clause, error) {
	switch field {
	case "status":
		if !model.Status(rest).Valid() {
			return clause{}, fmt.Errorf("unknown status %q", rest)
		}
		return clause{field: field, text: rest}, nil

	case "owner", "category", "tag":
		if rest == "" {
			return clause{}, fmt.Errorf("empty %s clause", field)
		}
		return clause{field: field, text: strings.ToLower(rest)}, nil

	case "priority", "value":
		op := ""
		for _, candidate := range numericOps {
			if strings.HasPrefix(rest, candidate) {
				op = candidate
				rest = rest[len(candidate):]
				break
			}
		}
		num, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return clause{}, fmt.Errorf("bad %s clause: %q is not a number", field, rest)
		}
		return clause{field: field, op: op, num: num}, nil

	default:
		return clause{}, fmt.Errorf("unknown field %q", field)
	}
}

// Match reports whether the record satisfies every term of the query.
func (q Query) Match(r model.Record) bool {
	for _, c := range q.clauses {
		if !c.match(r) {
			return false
		}
	}
	for _, term := range q.terms {
		if !matchText(r, term) {
			return false
		}
	}
	return true
}

// Predicate returns the query as a filter predicate.
func (q Query) Predicate() func(model.Record) bool {
	return q.Match
}

func (c clause) match(r model.Record) bool {
	switch c.field {
	case "status":
		return string(r.Status) == c.text
	case "owner":
		return strings.ToLower(r.Owner) == c.text
	case "category":
		cat := strings.ToLower(r.Category)
		return cat == c.text || strings.HasPrefix(cat, c.text+"/")
	case "tag":
		for _, tag := range r.Tags {
			if strings.ToLower(tag) == c.text {
				return true
			}
		}
		return false
	case "priority":
		return compareNum(float64(r.Priority), c.op, c.num)
	case "value":
		return compareNum(r.Value, c.op, c.num)
	}
	return false
}

func compareNum(v float64, op string, want float64) bool {
	switch op {
	case "<":
		return v < want
	case "<=":
		return v <= want
	case ">":
		return v > want
	case ">=":
		return v >= want
	default:
		return v == want
	}
}

func matchText(r model.Record, term string) bool {
	if strings.Contains(strings.ToLower(r.ID), term) ||
		strings.Contains(strings.ToLower(r.Title), term) ||
		strings.Contains(strings.ToLower(r.Owner), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
