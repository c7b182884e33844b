package config

import (
	"bytes"
	"errors"
)

// normalizeJSONC blanks comments and trailing commas so encoding/json can
// decode the result. Every byte keeps its offset, so decoder positions map
// straight back onto the user's file.
func normalizeJSONC(src string) (string, error) {
	buf := []byte(src)
	comma := -1

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c == '"':
			i = stringEnd(buf, i)
			comma = -1
		case c == '/' && at(buf, i+1) == '/':
			end := bytes.IndexAny(buf[i:], "\r\n")
			if end < 0 {
				end = len(buf) - i
			}
			blank(buf[i : i+end])
			i += end - 1
		case c == '/' && at(buf, i+1) == '*':
			end := bytes.Index(buf[i+2:], []byte("*/"))
			if end < 0 {
				return "", errors.New("unterminated block comment in JSONC")
			}
			stop := i + 2 + end + 2
			blank(buf[i:stop])
			i = stop - 1
		case c == ',':
			comma = i
		case c == '}' || c == ']':
			if comma >= 0 {
				buf[comma] = ' '
			}
			comma = -1
		case isJSONWhitespace(c):
		default:
			comma = -1
		}
	}
	return string(buf), nil
}

// stringEnd returns the index of the quote closing the string opened at i.
// An unterminated string runs to the end and is left for the decoder to reject.
func stringEnd(buf []byte, i int) int {
	for j := i + 1; j < len(buf); j++ {
		switch buf[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return len(buf) - 1
}

func at(buf []byte, i int) byte {
	if i < len(buf) {
		return buf[i]
	}
	return 0
}

// blank overwrites b with spaces, keeping line structure intact.
func blank(b []byte) {
	for i, c := range b {
		if c != '\n' && c != '\r' && c != '\t' {
			b[i] = ' '
		}
	}
}

func isJSONWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
