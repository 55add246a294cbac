// Package format escapes user-supplied text for Telegram markup.
package format

import "regexp"

var mdV1Re = regexp.MustCompile("([_*`\\[])")

// EscapeMarkdown escapes text for the legacy Markdown parse mode.
func EscapeMarkdown(text string) string {
	return mdV1Re.ReplaceAllString(text, `\${1}`)
}
