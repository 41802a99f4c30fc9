package notifier

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"flashnotify/internal/transport/telegram"
)

const updatedLayout = "2006-01-02 15:04:05 MST"

// Link is one entry of the quick-links line.
type Link struct {
	Label string
	URL   string
}

// Announcement is the data shown in the pinned message.
type Announcement struct {
	Changes    string
	Title      string
	ArticleURL string
	// Risk is in [1,5], Score in [1,100]. They are display values only.
	Risk      int
	Score     int
	UpdatedAt time.Time
}

// NewAnnouncement fills the random display numbers from rng.
func NewAnnouncement(rng *rand.Rand, changes, title, articleURL string, now time.Time) Announcement {
	return Announcement{
		Changes:    changes,
		Title:      title,
		ArticleURL: articleURL,
		Risk:       rng.IntN(5) + 1,
		Score:      rng.IntN(100) + 1,
		UpdatedAt:  now,
	}
}

// Compose renders the announcement as Telegram (legacy) Markdown.
//
// Free text is escaped. If the result exceeds telegram.TextLimit the article
// title is shortened first, but only when the text around the change summary
// is already too long on its own; then the change summary is shortened.
// Whatever still does not fit (a huge site name or link list) is cut at the limit.
func Compose(siteName string, links []Link, loc *time.Location, a Announcement) string {
	if loc == nil {
		loc = time.UTC
	}
	draw := func() string { return render(siteName, links, loc, a) }

	if runeLen(draw()) > telegram.TextLimit {
		changes := a.Changes
		a.Changes = ""
		frameTooLong := runeLen(draw()) > telegram.TextLimit
		a.Changes = changes
		if frameTooLong {
			shrink(&a.Title, draw)
		}
	}
	text := shrink(&a.Changes, draw)
	return telegram.Truncate(text, telegram.TextLimit)
}

// shrink shortens *field until draw() fits telegram.TextLimit or the field is
// empty, and returns the last rendering.
func shrink(field *string, draw func() string) string {
	text := draw()
	for runeLen(text) > telegram.TextLimit && *field != "" {
		keep := runeLen(*field) - (runeLen(text) - telegram.TextLimit) - 1
		if keep <= 0 {
			*field = ""
		} else {
			*field = telegram.Truncate(*field, keep)
		}
		text = draw()
	}
	return text
}

func render(siteName string, links []Link, loc *time.Location, a Announcement) string {
	var b strings.Builder
	b.WriteString("🚀 " + escapeMarkdown(siteName) + " Update ✨\n\n")
	b.WriteString("🟢 Latest Changes:\n")
	b.WriteString(escapeMarkdown(a.Changes))
	b.WriteString("\n\n")
	b.WriteString("📝 New Article: " + escapeMarkdown(a.Title) + "\n")
	b.WriteString("🔗 Read more: " + a.ArticleURL + "\n\n")
	b.WriteString("⚖️ Risk Level: " + strconv.Itoa(a.Risk) + "/5\n")
	b.WriteString("⭐ Score: " + strconv.Itoa(a.Score) + "/100\n")
	b.WriteString("🏢 Last Updated: " + a.UpdatedAt.In(loc).Format(updatedLayout))
	if len(links) > 0 {
		parts := make([]string, 0, len(links))
		for _, l := range links {
			parts = append(parts, "["+escapeMarkdown(l.Label)+"]("+l.URL+")")
		}
		b.WriteString("\n\n🔗 Quick Links:\n")
		b.WriteString(strings.Join(parts, " | "))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// escapeMarkdown escapes the entity characters of Telegram's legacy Markdown mode.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func runeLen(s string) int { return len([]rune(s)) }
