package format

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV1Specials = "_*`["

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile("([" + regexp.QuoteMeta(mdV2Specials) + "])")
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// MD escapes user text for legacy Markdown, the mode replies are sent with.
func MD(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV1)
	return out
}

// Bold wraps user text in a legacy Markdown bold entity.
func Bold(text string) string {
	return entity("*", text)
}

// Italic wraps user text in a legacy Markdown italic entity.
func Italic(text string) string {
	return entity("_", text)
}

// entity wraps text in marker. Legacy Markdown has no escapes inside an
// entity, so the entity is closed before each special character, the
// character is escaped outside, and the entity is reopened after it:
// "snake_case" becomes _snake_\__case_. No empty entities are emitted.
func entity(marker, text string) string {
	var b strings.Builder
	run := 0
	flush := func(i int) {
		if i > run {
			b.WriteString(marker + text[run:i] + marker)
		}
	}
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(mdV1Specials, text[i]) < 0 {
			continue
		}
		flush(i)
		b.WriteByte('\\')
		b.WriteByte(text[i])
		run = i + 1
	}
	flush(len(text))
	return b.String()
}
