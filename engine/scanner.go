package engine

import "strings"

// scanOutsideStrings walks script byte by byte, tracking double-quoted
// string-literal state (with backslash-escape parity), and calls transform
// on every maximal run of text that lies outside a string literal. Text
// inside string literals (including the quotes themselves) is copied
// through unchanged. This scanner is shared by the preprocessor's reference
// rewrite and both reference shifters so their notion of "outside a string"
// never drifts apart (§9); the dependency extractor's stripStringLiterals
// applies the same quote and backslash rules.
func scanOutsideStrings(script string, transform func(segment string) string) string {
	var out strings.Builder
	segStart := 0
	inString := false
	backslashes := 0
	i := 0
	for i < len(script) {
		b := script[i]
		if inString {
			if b == '\\' {
				backslashes++
				i++
				continue
			}
			if b == '"' && backslashes%2 == 0 {
				out.WriteString(script[segStart : i+1])
				inString = false
				segStart = i + 1
			}
			backslashes = 0
			i++
			continue
		}

		if b == '"' {
			out.WriteString(transform(script[segStart:i]))
			inString = true
			segStart = i
			backslashes = 0
			i++
			continue
		}

		i++
	}

	if segStart < len(script) {
		if inString {
			out.WriteString(script[segStart:])
		} else {
			out.WriteString(transform(script[segStart:]))
		}
	}

	return out.String()
}

// stripStringLiterals replaces the interior of every double-quoted string
// literal with spaces, preserving the overall length and the surrounding
// quotes so column offsets of anything outside the literal are unaffected.
func stripStringLiterals(script string) string {
	var out strings.Builder
	inString := false
	backslashes := 0
	for i := 0; i < len(script); i++ {
		b := script[i]
		if inString {
			if b == '\\' {
				backslashes++
				out.WriteByte(' ')
				continue
			}
			if b == '"' && backslashes%2 == 0 {
				out.WriteByte('"')
				inString = false
				backslashes = 0
				continue
			}
			backslashes = 0
			out.WriteByte(' ')
			continue
		}
		if b == '"' {
			out.WriteByte('"')
			inString = true
			backslashes = 0
			continue
		}
		out.WriteByte(b)
	}
	return out.String()
}
