package article

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Article is one generated update page.
type Article struct {
	ID      int64
	Title   string
	Content string
	HTML    string
	Path    string
}

// Writer renders articles into Dir as <id>.html.
//
// The id is the current Unix time in seconds, so two writes within the same
// second target the same file and the later one wins. Concurrent runs are not
// coordinated.
type Writer struct {
	Dir    string
	Author string
	Now    func() time.Time
}

// NewWriter returns a Writer using the wall clock.
func NewWriter(dir, author string) *Writer {
	return &Writer{Dir: dir, Author: author, Now: time.Now}
}

var page = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script type="application/ld+json">
{{.LD}}
    </script>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p>{{.Content}}</p>
</body>
</html>
`))

type organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// linkedData is the schema.org Article JSON-LD block.
type linkedData struct {
	Context       string       `json:"@context"`
	Type          string       `json:"@type"`
	Headline      string       `json:"headline"`
	DatePublished string       `json:"datePublished"`
	Author        organization `json:"author"`
}

// Write renders title and content and writes the page, creating Dir if needed.
func (w *Writer) Write(title, content string) (Article, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	ts := now()
	id := ts.Unix()

	html, err := Render(title, content, w.Author, ts)
	if err != nil {
		return Article{}, err
	}

	dir := w.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "articles"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Article{}, fmt.Errorf("create article dir: %w", err)
	}
	path := filepath.Join(dir, FileName(id))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return Article{}, fmt.Errorf("write article: %w", err)
	}

	return Article{ID: id, Title: title, Content: content, HTML: html, Path: path}, nil
}

// Render returns the HTML document for an article published at ts.
func Render(title, content, author string, ts time.Time) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("article title is empty")
	}
	ld, err := json.MarshalIndent(linkedData{
		Context:       "https://schema.org",
		Type:          "Article",
		Headline:      title,
		DatePublished: ts.Format(time.RFC3339),
		Author:        organization{Type: "Organization", Name: author},
	}, "    ", "  ")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title   string
		Content string
		// json.Marshal escapes <, > and &, so the block can't close the script tag.
		LD template.JS
	}{Title: title, Content: content, LD: template.JS("    " + string(ld))})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FileName is the on-disk name of article id.
func FileName(id int64) string {
	return strconv.FormatInt(id, 10) + ".html"
}

// URL is the public link of article id under baseURL.
func URL(baseURL string, id int64) string {
	return strings.TrimRight(baseURL, "/") + "/articles/" + FileName(id)
}
