// Package article generates and writes the static HTML update article.
package article

import "time"

const titleTimeLayout = "2006-01-02 15:04:05"

// Generate returns the article title and body for an update published at now.
// The body is static; only the title carries the timestamp.
func Generate(siteName, content string, now time.Time) (title, body string) {
	return siteName + " Update: " + now.Format(titleTimeLayout), content
}
