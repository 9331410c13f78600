package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned for a document with no authors or libraries.
var ErrEmptyCatalog = errors.New("catalog document is empty")

// Catalog is a parsed catalog document.
type Catalog struct {
	Authors   []Author  `yaml:"authors"`
	Libraries []Library `yaml:"libraries"`
}

// Author is an author and the books they wrote.
type Author struct {
	Name  string `yaml:"name"`
	Books []Book `yaml:"books"`
}

// Book is a book listed under its author.
type Book struct {
	Title           string `yaml:"title"`
	PublicationYear int    `yaml:"publication_year"`
}

// Library lists books by title and author name. The books must exist or be
// declared in the same document.
type Library struct {
	Name      string        `yaml:"name"`
	Librarian string        `yaml:"librarian"`
	Books     []LibraryBook `yaml:"books"`
}

// LibraryBook references a book.
type LibraryBook struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Authors) == 0 && len(c.Libraries) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &c, nil
}

// Validate checks the document against the same rules the API applies.
// currentYear bounds publication years.
func (c *Catalog) Validate(currentYear int) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, a := range c.Authors {
		if strings.TrimSpace(a.Name) == "" {
			add("authors[%d]: name is required", i)
		}
		for j, b := range a.Books {
			if strings.TrimSpace(b.Title) == "" {
				add("authors[%d].books[%d]: title is required", i, j)
			}
			if b.PublicationYear > currentYear {
				add("authors[%d].books[%d]: publication_year (%d) cannot be in the future (current year %d)",
					i, j, b.PublicationYear, currentYear)
			}
		}
	}

	for i, l := range c.Libraries {
		if strings.TrimSpace(l.Name) == "" {
			add("libraries[%d]: name is required", i)
		}
		for j, b := range l.Books {
			if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
				add("libraries[%d].books[%d]: title and author are required", i, j)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func currentYear(now func() time.Time) int {
	if now == nil {
		return time.Now().Year()
	}
	return now().Year()
}
