package person

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var prepositions = map[string]bool{
	"de": true, "del": true, "la": true, "las": true, "los": true, "el": true,
	"y": true, "van": true, "von": true, "da": true, "di": true, "dos": true,
}

var initialPattern = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑÜ]{1,2}\.$`)

// NameSet holds lower-cased known first names.
type NameSet map[string]bool

func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			set[n] = true
		}
	}
	return set
}

func (s NameSet) has(word string) bool { return s[strings.ToLower(word)] }

func isPreposition(w string) bool { return prepositions[strings.ToLower(w)] }

func isInitial(w string) bool { return initialPattern.MatchString(w) }

func isNickname(w string) bool {
	if utf8.RuneCountInString(w) < 3 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(w)
	last, _ := utf8.DecodeLastRuneInString(w)
	switch first {
	case '"', '\'':
		return last == first
	case '«':
		return last == '»'
	case '“', '”':
		return last == '”' || last == '“'
	}
	return false
}

func closingQuote(open rune) rune {
	switch open {
	case '«':
		return '»'
	case '“':
		return '”'
	}
	return open
}

// tokenize splits on spaces but keeps a quoted nickname as one token.
// A quote opens a nickname only at the start or after a space, so
// D'Angelo and O'Brien stay whole.
func tokenize(full string) []string {
	var (
		tokens  []string
		current strings.Builder
		closing rune
		quoted  bool
		prev    = ' '
	)
	flushWords := func() {
		tokens = append(tokens, strings.Fields(current.String())...)
		current.Reset()
	}

	for _, r := range full {
		switch {
		case !quoted && prev == ' ' && (r == '"' || r == '\'' || r == '«' || r == '“'):
			flushWords()
			quoted, closing = true, closingQuote(r)
			current.WriteRune(r)
		case quoted && (r == closing || r == '”' || r == '»'):
			current.WriteRune(r)
			tokens = append(tokens, strings.TrimSpace(current.String()))
			current.Reset()
			quoted = false
		case quoted:
			current.WriteRune(r)
		case r == ' ':
			flushWords()
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	// An unclosed quote is plain text.
	flushWords()
	return tokens
}

func firstNamePart(w string, known NameSet) bool {
	return known.has(w) || isNickname(w) || isInitial(w)
}

// nextNonPreposition returns the index of the first word at or after i
// that is not a preposition, or len(words).
func nextNonPreposition(words []string, i int) int {
	for i < len(words) && isPreposition(words[i]) {
		i++
	}
	return i
}

// SplitFullName separates a full name into first and last name.
// Either part may be empty.
//
//	"Pedro García"                → "Pedro", "García"
//	"María del Carmen Rodríguez"  → "María del Carmen", "Rodríguez"
//	`Ricardo "Bocha" Bochini`     → `Ricardo "Bocha"`, "Bochini"
//	"A. J. Bogani"                → "A. J.", "Bogani"
//	"Shakira"                     → "", "Shakira"
//	"El Mató a un Policía Motorizado" → "", the whole name
func SplitFullName(full string, known NameSet) (first, last string) {
	trimmed := strings.TrimSpace(full)
	if trimmed == "" {
		return "", ""
	}
	words := tokenize(trimmed)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return "", words[0]
	}

	if hasNicknameOrInitial(words) {
		return splitAt(words, markedFirstNameEnd(words, known))
	}

	anyKnown := false
	for _, w := range words {
		if !isPreposition(w) && known.has(w) {
			anyKnown = true
			break
		}
	}
	if !anyKnown {
		return "", trimmed
	}

	start := lastNameStart(words, known)
	if start == 0 {
		return words[0], strings.Join(words[1:], " ")
	}
	return splitAt(words, start)
}

func hasNicknameOrInitial(words []string) bool {
	for _, w := range words {
		if isNickname(w) || isInitial(w) {
			return true
		}
	}
	return false
}

// splitAt cuts words at end; when everything is first name the last
// word becomes the last name.
func splitAt(words []string, end int) (string, string) {
	if end >= len(words) {
		end = len(words) - 1
	}
	return strings.Join(words[:end], " "), strings.Join(words[end:], " ")
}

// markedFirstNameEnd extends the first name over nicknames, initials,
// known names and the prepositions that lead into them.
func markedFirstNameEnd(words []string, known NameSet) int {
	end := 0
	for i := 0; i < len(words); i++ {
		w := words[i]
		if firstNamePart(w, known) {
			end = i + 1
			continue
		}
		if !isPreposition(w) {
			break
		}
		next := nextNonPreposition(words, i+1)
		if next >= len(words) || !firstNamePart(words[next], known) {
			break
		}
		end = next + 1
		i = next
	}
	return end
}

// lastNameStart finds the first unknown word, attaching prepositions to
// the word they precede.
func lastNameStart(words []string, known NameSet) int {
	allKnown := true
	for _, w := range words {
		if isPreposition(w) || isNickname(w) || isInitial(w) {
			continue
		}
		if !known.has(w) {
			allKnown = false
			break
		}
	}
	if allKnown {
		start := len(words) - 1
		for start > 0 && isPreposition(words[start-1]) {
			start--
		}
		if start == 0 {
			start = len(words) - 1
		}
		return start
	}

	for i := 0; i < len(words); {
		w := words[i]
		switch {
		case isNickname(w) || isInitial(w) || known.has(w):
			i++
		case isPreposition(w):
			next := nextNonPreposition(words, i+1)
			if next >= len(words) || !firstNamePart(words[next], known) {
				return i
			}
			i = next + 1
		default:
			return i
		}
	}
	return len(words)
}
