package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
)

const maxBodyBytes = 1 << 20

// errMalformedBody is returned for bodies that are not a JSON object.
var errMalformedBody = errors.New("malformed JSON body")

const (
	msgNotString  = "Not a valid string."
	msgNotInteger = "A valid integer is required."
)

// readObject reads the request body as a JSON object keyed by field name.
func readObject(r *http.Request) (map[string]jsoniter.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	fields := map[string]jsoniter.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return fields, nil
}

func isNull(raw jsoniter.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func stringField(fields map[string]jsoniter.RawMessage, name string, verr *catalog.ValidationError) *string {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		verr.Add(name, msgNotString)
		return nil
	}
	return &v
}

// intField accepts JSON numbers and numeric strings, as form posts send them.
func intField(fields map[string]jsoniter.RawMessage, name string, verr *catalog.ValidationError) *int {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if _, err := fmt.Sscanf(s, "%d", &v); err == nil && fmt.Sprint(v) == s {
			return &v
		}
	}
	verr.Add(name, msgNotInteger)
	return nil
}

func uintField(fields map[string]jsoniter.RawMessage, name string, verr *catalog.ValidationError) *uint {
	v := intField(fields, name, verr)
	if v == nil {
		return nil
	}
	if *v <= 0 {
		verr.Add(name, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *v))
		return nil
	}
	u := uint(*v)
	return &u
}

// decodeBookInput reads a book body. Type errors are returned as a
// *catalog.ValidationError so they render like any other field error.
func decodeBookInput(r *http.Request) (catalog.BookInput, error) {
	fields, err := readObject(r)
	if err != nil {
		return catalog.BookInput{}, err
	}

	verr := &catalog.ValidationError{}
	in := catalog.BookInput{
		Title:           stringField(fields, catalog.FieldTitle, verr),
		PublicationYear: intField(fields, catalog.FieldPublicationYear, verr),
		Author:          uintField(fields, catalog.FieldAuthor, verr),
	}
	return in, verr.ErrOrNil()
}

func decodeAuthorInput(r *http.Request) (catalog.AuthorInput, error) {
	fields, err := readObject(r)
	if err != nil {
		return catalog.AuthorInput{}, err
	}

	verr := &catalog.ValidationError{}
	in := catalog.AuthorInput{Name: stringField(fields, "name", verr)}
	return in, verr.ErrOrNil()
}
