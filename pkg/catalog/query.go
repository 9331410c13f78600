package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names accepted by the book list.
const (
	ParamTitle           = "title"
	ParamAuthor          = "author"
	ParamPublicationYear = "publication_year"
	ParamSearch          = "search"
	ParamOrdering        = "ordering"
)

// Sortable fields.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldPublicationYear = "publication_year"
	FieldAuthor          = "author"
)

var sortableFields = map[string]bool{
	FieldID:              true,
	FieldTitle:           true,
	FieldPublicationYear: true,
	FieldAuthor:          true,
}

// DefaultOrdering is used when no valid ordering term is given.
var DefaultOrdering = []OrderTerm{{Field: FieldTitle}}

// OrderTerm sorts by one field.
type OrderTerm struct {
	Field string
	Desc  bool
}

func (o OrderTerm) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// Query is a parsed book list request. Empty parameters are treated as
// absent.
type Query struct {
	Title *string

	AuthorID *uint

	PublicationYear *int

	// Search is matched case-insensitively against title and author name.
	Search string

	// Ordering is nil when the request had no ordering parameter.
	Ordering []OrderTerm

	// matchNone is set when a numeric filter could not be parsed.
	matchNone bool
}

// MatchesNothing reports whether a filter value was unparsable, in which
// case the result is always empty.
func (q Query) MatchesNothing() bool {
	return q.matchNone
}

// ParseQuery reads the list parameters from values. It never fails:
// non-numeric author or publication_year values produce a query that matches
// nothing, and unknown ordering fields fall back to DefaultOrdering.
func ParseQuery(values url.Values) Query {
	var q Query

	if v := values.Get(ParamTitle); v != "" {
		q.Title = &v
	}

	if v := strings.TrimSpace(values.Get(ParamAuthor)); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			q.matchNone = true
		} else {
			authorID := uint(id)
			q.AuthorID = &authorID
		}
	}

	if v := strings.TrimSpace(values.Get(ParamPublicationYear)); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			q.matchNone = true
		} else {
			q.PublicationYear = &year
		}
	}

	q.Search = strings.TrimSpace(values.Get(ParamSearch))

	if _, ok := values[ParamOrdering]; ok {
		q.Ordering = ParseOrdering(values.Get(ParamOrdering))
	}

	return q
}

// ParseOrdering parses a comma separated list of fields, each optionally
// prefixed with "-". Unknown fields are dropped; if none remain the result
// is DefaultOrdering.
func ParseOrdering(raw string) []OrderTerm {
	var terms []OrderTerm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		term := OrderTerm{Field: strings.TrimPrefix(part, "-"), Desc: strings.HasPrefix(part, "-")}
		if !sortableFields[term.Field] {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return DefaultOrdering
	}
	return terms
}
