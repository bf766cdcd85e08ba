package launch

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted word is not closed.
	ErrUnclosedQuote = errors.New("unclosed quote in jvm_args")

	// ErrTrailingEscape is returned when jvm_args ends in a backslash.
	ErrTrailingEscape = errors.New("trailing escape character in jvm_args")
)

// SplitArgs splits a user-supplied argument string with POSIX shell word
// rules: whitespace separates words, single quotes are literal, double
// quotes allow \" \\ \$ and \` escapes, and a bare backslash escapes the
// next character. Empty quoted words are kept.
func SplitArgs(s string) ([]string, error) {
	words := []string{}
	var word strings.Builder
	var quote rune
	inWord := false

	flush := func() {
		if inWord {
			words = append(words, word.String())
			word.Reset()
			inWord = false
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case quote == '\'':
			if ch == '\'' {
				quote = 0
			} else {
				word.WriteRune(ch)
			}

		case ch == '\\':
			if i+1 == len(runes) {
				return nil, ErrTrailingEscape
			}
			i++
			next := runes[i]
			if quote == '"' && !strings.ContainsRune("\"\\$`", next) {
				word.WriteRune('\\')
			}
			word.WriteRune(next)
			inWord = true

		case quote == '"':
			if ch == '"' {
				quote = 0
			} else {
				word.WriteRune(ch)
			}

		case ch == '\'' || ch == '"':
			quote = ch
			inWord = true

		case unicode.IsSpace(ch):
			flush()

		default:
			word.WriteRune(ch)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("%w: %c", ErrUnclosedQuote, quote)
	}
	flush()
	return words, nil
}
