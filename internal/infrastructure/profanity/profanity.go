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
		log.Fatalf("Failed to parse banned words: %s", err)
	}

	return bannedWords
}

// Filter masks banned words in relayed chat text. Matching is case
// insensitive and tolerates the usual digit/symbol substitutions.
type Filter struct {
	re *regexp.Regexp
}

func Default() *Filter {
	once.Do(func() {
		defaultFilter = newFilter(loadBannedWords())
	})
	return defaultFilter
}

func newFilter(words []string) *Filter {
	patterns := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}
		patterns = append(patterns, substitutionPattern(w))
	}

	expr := `(?i)\b(` + strings.Join(patterns, "|") + `)\b`
	return &Filter{re: regexp.MustCompile(expr)}
}

// substitutionPattern turns a word into a regex that also catches common
// leetspeak spellings (a->@/4, i->1/!, o->0, s->$/5, e->3).
func substitutionPattern(word string) string {
	subs := map[rune]string{
		'a': `[a@4]`,
		'e': `[e3]`,
		'i': `[i1!]`,
		'o': `[o0]`,
		's': `[s$5]`,
		't': `[t7]`,
	}

	var sb strings.Builder
	for _, r := range word {
		if class, ok := subs[r]; ok {
			sb.WriteString(class)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	return sb.String()
}

// Mask replaces each banned word with asterisks of the same length.
func (f *Filter) Mask(text string) string {
	return f.re.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat("*", len(match))
	})
}
