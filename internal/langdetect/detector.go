// Package langdetect models language detection as an explicitly fallible
// collaborator. The post ledger calls Detect on every new post body and maps
// any failure to the empty tag; detection never blocks or fails a write.
package langdetect

import (
	"errors"
	"strings"
	"unicode"

	xlang "golang.org/x/text/language"
)

// ErrIndeterminate is returned when the input gives no confident signal for
// any known language. Callers are expected to fall back to an empty tag.
var ErrIndeterminate = errors.New("language indeterminate")

// Detector identifies the language of a short text.
//
// Implementations return a BCP 47 tag (e.g. "en", "es") or an error when the
// input is indeterminate. Callers must treat errors as "unknown language",
// never as a failure of the surrounding operation.
type Detector interface {
	Detect(text string) (string, error)
}

// StopwordDetector is a small in-process Detector scoring the input against
// per-language stopword sets. It is intentionally modest: good enough to tag
// the bulk of posts, and honest (ErrIndeterminate) when the text is too
// short or ambiguous. Safe for concurrent use; it holds no mutable state.
type StopwordDetector struct {
	minTokens int
}

// NewStopwordDetector returns a detector requiring at least two scoreable
// tokens before it commits to a tag.
func NewStopwordDetector() *StopwordDetector {
	return &StopwordDetector{minTokens: 2}
}

// profiles maps a language tag to its highest-frequency function words.
// Matching is exact per lowercase token.
var profiles = map[string][]string{
	"en": {"the", "and", "is", "are", "of", "to", "in", "it", "that", "for", "was", "with", "this", "have", "not", "you", "my"},
	"es": {"el", "la", "los", "las", "de", "que", "y", "es", "en", "un", "una", "por", "con", "para", "no", "se"},
	"fr": {"le", "la", "les", "des", "de", "et", "est", "en", "un", "une", "que", "pour", "dans", "pas", "je", "ce"},
	"de": {"der", "die", "das", "und", "ist", "ich", "nicht", "ein", "eine", "zu", "mit", "auf", "für", "den", "sie"},
	"it": {"il", "lo", "la", "gli", "di", "che", "è", "e", "un", "una", "per", "non", "con", "sono", "mi"},
	"pt": {"o", "os", "as", "de", "que", "e", "é", "em", "um", "uma", "para", "não", "com", "do", "da"},
}

// Detect tokenizes the text and returns the tag of the best-scoring profile.
// It fails with ErrIndeterminate on short input, zero stopword hits, or a
// tie between two languages.
func (d *StopwordDetector) Detect(text string) (string, error) {
	tokens := tokenize(text)
	if len(tokens) < d.minTokens {
		return "", ErrIndeterminate
	}

	scores := make(map[string]int, len(stopwordSets))
	for tag, set := range stopwordSets {
		for _, t := range tokens {
			if _, ok := set[t]; ok {
				scores[tag]++
			}
		}
	}

	best, bestScore, runnerUp := "", 0, 0
	for tag, sc := range scores {
		switch {
		case sc > bestScore:
			best, runnerUp, bestScore = tag, bestScore, sc
		case sc > runnerUp:
			runnerUp = sc
		}
	}
	if bestScore == 0 || bestScore == runnerUp {
		return "", ErrIndeterminate
	}

	// Normalize through x/text so only well-formed tags ever leave here.
	tag, err := xlang.Parse(best)
	if err != nil {
		return "", ErrIndeterminate
	}
	return tag.String(), nil
}

// stopwordSets is the lookup form of profiles, built once at init.
var stopwordSets = func() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(profiles))
	for tag, words := range profiles {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		out[tag] = set
	}
	return out
}()

// tokenize lowercases and splits on anything that is not a letter.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
