package markup

import (
	"strings"
	"unicode/utf8"
)

// Символы, которые MarkdownV2 в телеграме требует экранировать
const markdownSpecials = "_*[]()~`>#+-=|{}.!\\"

var replacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(markdownSpecials))
	for _, r := range markdownSpecials {
		pairs = append(pairs, string(r), "\\"+string(r))
	}
	return strings.NewReplacer(pairs...)
}()

// EscapeForMarkdown экранирует текст для MarkdownV2.
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Truncate обрезает строку для отображения, в хранилище заголовки полные.
func Truncate(src string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(src) <= limit {
		return src
	}

	runes := []rune(src)
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
