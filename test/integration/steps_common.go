package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/cucumber/godog"
	jsoniter "github.com/json-iterator/go"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bookRef matches {book:Title} placeholders in request paths.
var bookRef = regexp.MustCompile(`\{book:([^}]+)\}`)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	users        map[string]uint
	authors      map[string]uint
	books        map[string]uint
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:      tc,
		users:   make(map[string]uint),
		authors: make(map[string]uint),
		books:   make(map[string]uint),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.resetDatabase()
	})

	// Background steps
	sc.Step(`^the bookshelf server is running$`, s.theBookshelfServerIsRunning)
	sc.Step(`^a user "([^"]*)" has registered with password "([^"]*)"$`, s.aUserHasRegistered)
	sc.Step(`^an author "([^"]*)" exists$`, s.anAuthorExists)
	sc.Step(`^"([^"]*)" owns a book "([^"]*)" by "([^"]*)" published in (\d+)$`, s.userOwnsABook)
	sc.Step(`^a catalog book "([^"]*)" by "([^"]*)" published in (\d+)$`, s.aCatalogBook)

	// Authentication steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogIn)
	sc.Step(`^I am anonymous$`, s.iAmAnonymous)

	// Request steps
	sc.Step(`^I (GET|DELETE) "([^"]*)"$`, s.iSendRequest)
	sc.Step(`^I (POST|PUT|PATCH) "([^"]*)" with:$`, s.iSendRequestWithBody)
	sc.Step(`^I create a book "([^"]*)" by "([^"]*)" published in (\d+)$`, s.iCreateABook)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should list the titles "([^"]*)"$`, s.theResponseShouldListTitles)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
}

func (s *StepsContext) resetDatabase() error {
	s.authToken = ""
	return s.tc.DB.Exec(`TRUNCATE TABLE library_books, librarians, libraries, books, authors,
		user_groups, group_permissions, groups, users RESTART IDENTITY CASCADE`).Error
}

// Background steps

func (s *StepsContext) theBookshelfServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aUserHasRegistered(username, password string) error {
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	if err := s.do(http.MethodPost, "/register/", body); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("register %s: status %d: %s", username, s.response.StatusCode, s.responseBody)
	}

	var user struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(s.responseBody, &user); err != nil {
		return err
	}
	s.users[username] = user.ID
	return nil
}

func (s *StepsContext) anAuthorExists(name string) error {
	author := model.Author{Name: name}
	if err := s.tc.DB.Create(&author).Error; err != nil {
		return err
	}
	s.authors[name] = author.ID
	return nil
}

func (s *StepsContext) authorID(name string) (uint, error) {
	if id, ok := s.authors[name]; ok {
		return id, nil
	}
	if err := s.anAuthorExists(name); err != nil {
		return 0, err
	}
	return s.authors[name], nil
}

func (s *StepsContext) insertBook(title, author string, year int, owner *uint) error {
	authorID, err := s.authorID(author)
	if err != nil {
		return err
	}
	book := model.Book{Title: title, PublicationYear: year, AuthorID: authorID, OwnerID: owner}
	if err := s.tc.DB.Omit("Author").Create(&book).Error; err != nil {
		return err
	}
	s.books[title] = book.ID
	return nil
}

func (s *StepsContext) userOwnsABook(username, title, author string, year int) error {
	id, ok := s.users[username]
	if !ok {
		return fmt.Errorf("unknown user %q", username)
	}
	return s.insertBook(title, author, year, &id)
}

func (s *StepsContext) aCatalogBook(title, author string, year int) error {
	return s.insertBook(title, author, year, nil)
}

// Authentication steps

func (s *StepsContext) iLogIn(username, password string) error {
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	if err := s.do(http.MethodPost, "/login/", body); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login %s: status %d", username, s.response.StatusCode)
	}

	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &tok); err != nil {
		return err
	}
	s.authToken = tok.Token
	return nil
}

func (s *StepsContext) iAmAnonymous() error {
	s.authToken = ""
	return nil
}

// Request steps

func (s *StepsContext) iSendRequest(method, path string) error {
	return s.do(method, path, "")
}

func (s *StepsContext) iSendRequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, s.expand(body.Content))
}

func (s *StepsContext) iCreateABook(title, author string, year int) error {
	authorID, err := s.authorID(author)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(`{"title":%q,"publication_year":%d,"author":%d}`, title, year, authorID)
	if err := s.do(http.MethodPost, "/books/", body); err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusCreated {
		var book struct {
			ID uint `json:"id"`
		}
		if err := json.Unmarshal(s.responseBody, &book); err == nil {
			s.books[title] = book.ID
		}
	}
	return nil
}

// expand replaces {book:Title} and {author:Name} references with ids.
func (s *StepsContext) expand(text string) string {
	text = bookRef.ReplaceAllStringFunc(text, func(ref string) string {
		title := bookRef.FindStringSubmatch(ref)[1]
		return fmt.Sprint(s.books[title])
	})
	for name, id := range s.authors {
		text = strings.ReplaceAll(text, "{author:"+name+"}", fmt.Sprint(id))
	}
	return text
}

func (s *StepsContext) do(method, path, body string) error {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+s.expand(path), reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldListTitles(titles string) error {
	var books []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(s.responseBody, &books); err != nil {
		return fmt.Errorf("response is not a book list: %w", err)
	}

	got := make([]string, 0, len(books))
	for _, b := range books {
		got = append(got, b.Title)
	}
	want := []string{}
	if titles != "" {
		want = strings.Split(titles, ", ")
	}

	if strings.Join(got, "|") != strings.Join(want, "|") {
		return fmt.Errorf("expected titles %v, got %v", want, got)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}

	value, ok := body[field]
	if !ok {
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("field %q not in response (fields: %v)", field, keys)
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected response to contain %q, got %s", text, s.responseBody)
	}
	return nil
}
