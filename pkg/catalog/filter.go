package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// Filter narrows books by q and orders the result. books must be in
// insertion order; ties in the ordering keep that order. The input slice is
// not modified. The result is never nil.
func Filter(books []model.Book, q Query) []model.Book {
	out := make([]model.Book, 0, len(books))
	if q.MatchesNothing() {
		return out
	}

	search := strings.ToLower(q.Search)
	for _, b := range books {
		if q.Title != nil && b.Title != *q.Title {
			continue
		}
		if q.AuthorID != nil && b.AuthorID != *q.AuthorID {
			continue
		}
		if q.PublicationYear != nil && b.PublicationYear != *q.PublicationYear {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author.Name), search) {
			continue
		}
		out = append(out, b)
	}

	if q.Ordering != nil {
		Sort(out, q.Ordering)
	}
	return out
}

// Sort orders books in place by terms. The sort is stable.
func Sort(books []model.Book, terms []OrderTerm) {
	slices.SortStableFunc(books, func(a, b model.Book) int {
		for _, term := range terms {
			c := compareField(a, b, term.Field)
			if term.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareField(a, b model.Book, field string) int {
	switch field {
	case FieldID:
		return cmp.Compare(a.ID, b.ID)
	case FieldTitle:
		return strings.Compare(a.Title, b.Title)
	case FieldPublicationYear:
		return cmp.Compare(a.PublicationYear, b.PublicationYear)
	case FieldAuthor:
		return strings.Compare(a.Author.Name, b.Author.Name)
	}
	return 0
}
