package dataset

import (
	"strconv"
	"strings"
)

// yearBounds reads the leading and trailing four characters of a raw year
// range such as "2001-2005". Either bound is nil when those characters are
// not all ASCII digits. Inputs shorter than four characters are read whole.
func yearBounds(raw string) (start, end *int) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	head, tail := s, s
	if len(s) > 4 {
		head, tail = s[:4], s[len(s)-4:]
	}
	return digitsToInt(head), digitsToInt(tail)
}

func digitsToInt(s string) *int {
	if s == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// secondWord returns the second whitespace-separated word of s, or "".
func secondWord(s string) string {
	words := strings.Fields(s)
	if len(words) < 2 {
		return ""
	}
	return words[1]
}

// afterFirstSpace returns everything after the first space of s, or "" when s has none.
func afterFirstSpace(s string) string {
	_, after, found := strings.Cut(s, " ")
	if !found {
		return ""
	}
	return after
}
