package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
)

var (
	// Global instance for reuse (thread-safe)
	defaultFilter *Filter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded file: %s", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		log.Fatalf("Failed to unmarshal JSON: %s", err)
	}
	return bannedWords
}

type Filter struct {
	regex *regexp.Regexp
}

func NewFilter() *Filter {
	once.Do(func() {
		defaultFilter = &Filter{
			regex: buildMasterRegex(),
		}
	})

	return defaultFilter
}

func (f *Filter) Contains(text string) bool {
	if text == "" {
		return false
	}
	return f.regex.MatchString(normalizeText(text))
}

// Mask replaces offending words with asterisks, leaving the rest of the
// message intact. Chat is never rejected for content, only masked.
func (f *Filter) Mask(text string) string {
	if text == "" || !f.Contains(text) {
		return text
	}

	fields := strings.Fields(text)
	for i, field := range fields {
		if f.Contains(field) {
			fields[i] = strings.Repeat("*", len([]rune(field)))
		}
	}
	return strings.Join(fields, " ")
}

func normalizeText(text string) string {
	s := strings.ToLower(text)

	// Replace common leetspeak in one pass
	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e",
		"1", "i", "!", "i", "|", "i",
		"0", "o",
		"$", "s", "5", "s",
		"7", "t", "+", "t",
	).Replace(s)

	// Collapse whitespace and common separators
	s = separatorPattern.ReplaceAllString(s, " ")

	return s
}

var separatorPattern = regexp.MustCompile(`[\s_.\-*/\\|]+`)

func buildMasterRegex() *regexp.Regexp {
	patterns := make([]string, 0)
	for _, word := range loadBannedWords() {
		patterns = append(patterns, regexp.QuoteMeta(strings.ToLower(word)))
	}

	expression := `(?:^|\W)(` + strings.Join(patterns, "|") + `)(?:$|\W)`
	return regexp.MustCompile(expression)
}
