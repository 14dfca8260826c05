package htmltext

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// SummaryWords ограничивает число слов в кратком описании страницы.
const SummaryWords = 40

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	spaceRe      = regexp.MustCompile(`\s+`)
	scriptRe     = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagVocabRule = []struct {
		keyword string
		tag     string
	}{
		{"fibre", "fibre"},
		{"fiber", "fibre"},
		{"wireless", "wireless"},
		{"wifi", "wireless"},
		{"voip", "voip"},
		{"hosting", "hosting"},
		{"domain", "hosting"},
	}
	tagOrder = []string{"fibre", "wireless", "voip", "hosting"}
)

// matcher не потокобезопасен, поэтому доступ идёт под мьютексом.
var (
	matcherMu sync.Mutex
	matcher   = newTagMatcher()
)

func newTagMatcher() *ahocorasick.Matcher {
	keywords := make([]string, 0, len(tagVocabRule))
	for _, rule := range tagVocabRule {
		keywords = append(keywords, rule.keyword)
	}
	return ahocorasick.NewStringMatcher(keywords)
}

// Strip удаляет теги и схлопывает пробелы.
func Strip(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate обрезает строку до limit рун, последняя руна заменяется на «…».
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// SummarizeHTML возвращает первые SummaryWords слов видимого текста страницы.
func SummarizeHTML(html string) string {
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	words := strings.Fields(Strip(html))
	if len(words) > SummaryWords {
		words = words[:SummaryWords]
	}
	return strings.Join(words, " ")
}

// GuessTags ищет ключевые слова словаря без учёта регистра.
func GuessTags(html string) []string {
	text := []byte(strings.ToLower(html))

	matcherMu.Lock()
	hits := matcher.Match(text)
	matcherMu.Unlock()

	found := make(map[string]struct{}, len(hits))
	for _, idx := range hits {
		found[tagVocabRule[idx].tag] = struct{}{}
	}
	tags := make([]string, 0, len(found))
	for _, tag := range tagOrder {
		if _, ok := found[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DedupeStrings сохраняет первое вхождение каждой строки.
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
