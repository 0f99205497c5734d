//go:build integration

// Package integration drives a running API over HTTP.
//
//	go run ./cmd/api &
//	go test -tags integration -v ./test/integration/...
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const Timeout = 10 * time.Second

// BaseURL defaults to a local API and can be overridden with BOOKREVIEWS_API_URL.
var BaseURL = func() string {
	if u := os.Getenv("BOOKREVIEWS_API_URL"); u != "" {
		return u
	}
	return "http://localhost:8000/api/v1"
}()

type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "decode %s", string(r.Body))
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationBody struct {
	Errors []FieldError `json:"errors"`
}

type Entity struct {
	ID string `json:"id"`
}

type Page struct {
	Items []json.RawMessage `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Pages int               `json:"pages"`
}

// Do sends a request with an optional JSON body.
func Do(t *testing.T, method, url string, data interface{}) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "is the API running at %s?", BaseURL)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &Response{Status: resp.StatusCode, Body: raw}
}

func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN returns a 13 digit ISBN unique per call.
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%10000000000)
}

func create(t *testing.T, path string, data interface{}) string {
	t.Helper()
	resp := Do(t, http.MethodPost, BaseURL+path, data)
	require.Equal(t, http.StatusOK, resp.Status, "create %s: %s", path, string(resp.Body))

	var e Entity
	resp.Decode(t, &e)
	require.NotEmpty(t, e.ID)
	return e.ID
}

func CreateTestAuthor(t *testing.T, name string) string {
	return create(t, "/authors", map[string]string{"name": name, "bio": "Integration test author"})
}

func CreateTestBook(t *testing.T, authorID, title string) string {
	return create(t, "/books", map[string]string{
		"isbn":             GenerateTestISBN(),
		"title":            title,
		"description":      "Integration test book",
		"publication_date": "2001-09-11",
		"author_id":        authorID,
	})
}

func CreateTestUser(t *testing.T, name string) string {
	return create(t, "/users", map[string]string{
		"name":     name,
		"birthday": "1990-04-12",
		"email":    GenerateTestEmail("reader"),
		"phone":    "555-123-4567",
	})
}

func CreateTestReview(t *testing.T, bookID, userID string, rating int) string {
	return create(t, "/reviews", map[string]interface{}{
		"rating":  rating,
		"comment": "Integration test review",
		"book_id": bookID,
		"user_id": userID,
	})
}

// RequireGone asserts that GET path answers 404.
func RequireGone(t *testing.T, path string) {
	t.Helper()
	resp := Do(t, http.MethodGet, BaseURL+path, nil)
	require.Equal(t, http.StatusNotFound, resp.Status, "%s still exists: %s", path, string(resp.Body))
}
