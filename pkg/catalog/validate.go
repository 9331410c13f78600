package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field limits.
const (
	MaxTitleLength      = 200
	MaxAuthorNameLength = 100
)

// Validation messages.
const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
)

// ValidationError maps field names to messages. It is rendered as the
// response body as is, e.g. {"publication_year": ["..."]}.
type ValidationError struct {
	Fields map[string][]string
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// ErrOrNil returns e, or nil when empty.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FutureYearMessage is the message for a publication year after the current
// year.
func FutureYearMessage(year, currentYear int) string {
	return fmt.Sprintf("publication_year (%d) cannot be in the future (current year %d).", year, currentYear)
}

// UnknownAuthorMessage is the message for an author id with no author.
func UnknownAuthorMessage(id uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// BookInput is a create or update request body. Nil fields were not sent.
type BookInput struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	Author          *uint   `json:"author"`
}

// AuthorInput is an author create request body.
type AuthorInput struct {
	Name *string `json:"name"`
}

// AuthorLookup checks author ids during validation.
type AuthorLookup interface {
	AuthorExists(ctx context.Context, id uint) (bool, error)
}

// Validator checks request bodies before anything is written.
type Validator struct {
	// Now is the clock used for the current year.
	Now func() time.Time

	// Authors resolves author ids. When nil author ids are not checked.
	Authors AuthorLookup
}

// NewValidator returns a Validator on the wall clock.
func NewValidator(authors AuthorLookup) *Validator {
	return &Validator{Now: time.Now, Authors: authors}
}

func (v *Validator) currentYear() int {
	if v.Now == nil {
		return time.Now().Year()
	}
	return v.Now().Year()
}

// ValidatePublicationYear fails when year is after the current year.
func (v *Validator) ValidatePublicationYear(year int) error {
	if current := v.currentYear(); year > current {
		verr := &ValidationError{}
		verr.Add(FieldPublicationYear, FutureYearMessage(year, current))
		return verr
	}
	return nil
}

// ValidateBook checks in. When partial is false every field is required, as
// for create and PUT. A *ValidationError is returned for invalid input; any
// other error comes from the author lookup.
func (v *Validator) ValidateBook(ctx context.Context, in BookInput, partial bool) error {
	verr := &ValidationError{}

	switch {
	case in.Title == nil:
		if !partial {
			verr.Add(FieldTitle, MsgRequired)
		}
	case strings.TrimSpace(*in.Title) == "":
		verr.Add(FieldTitle, MsgBlank)
	case len([]rune(*in.Title)) > MaxTitleLength:
		verr.Add(FieldTitle, fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTitleLength))
	}

	if in.PublicationYear == nil {
		if !partial {
			verr.Add(FieldPublicationYear, MsgRequired)
		}
	} else if current := v.currentYear(); *in.PublicationYear > current {
		verr.Add(FieldPublicationYear, FutureYearMessage(*in.PublicationYear, current))
	}

	if in.Author == nil {
		if !partial {
			verr.Add(FieldAuthor, MsgRequired)
		}
	} else if v.Authors != nil {
		ok, err := v.Authors.AuthorExists(ctx, *in.Author)
		if err != nil {
			return fmt.Errorf("failed to look up author %d: %w", *in.Author, err)
		}
		if !ok {
			verr.Add(FieldAuthor, UnknownAuthorMessage(*in.Author))
		}
	}

	return verr.ErrOrNil()
}

// ValidateAuthor checks an author create body.
func (v *Validator) ValidateAuthor(in AuthorInput) error {
	verr := &ValidationError{}
	switch {
	case in.Name == nil:
		verr.Add("name", MsgRequired)
	case strings.TrimSpace(*in.Name) == "":
		verr.Add("name", MsgBlank)
	case len([]rune(*in.Name)) > MaxAuthorNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxAuthorNameLength))
	}
	return verr.ErrOrNil()
}
