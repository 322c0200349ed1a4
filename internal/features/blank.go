package features

// blank returns a copy of source with comment bodies and string literal
// contents replaced by spaces. Byte offsets and line breaks are preserved so
// positions found in the copy map straight back onto the original.
func blank(source []byte, lang Language) []byte {
	out := make([]byte, len(source))
	copy(out, source)

	wipe := func(from, to int) {
		for i := from; i < to && i < len(out); i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}

	n := len(source)
	for i := 0; i < n; {
		c := source[i]
		switch {
		case lang == LangPython && c == '#':
			end := lineEnd(source, i)
			wipe(i, end)
			i = end

		case lang != LangPython && c == '/' && i+1 < n && source[i+1] == '/':
			end := lineEnd(source, i)
			wipe(i, end)
			i = end

		case lang != LangPython && c == '/' && i+1 < n && source[i+1] == '*':
			end := indexFrom(source, i+2, "*/")
			if end < 0 {
				end = n
			} else {
				end += 2
			}
			wipe(i, end)
			i = end

		case lang == LangPython && (c == '"' || c == '\'') && i+2 < n && source[i+1] == c && source[i+2] == c:
			delim := string([]byte{c, c, c})
			end := indexFrom(source, i+3, delim)
			if end < 0 {
				end = n - 3
				if end < i+3 {
					end = i + 3
				}
			}
			wipe(i+3, end)
			i = end + 3

		case c == '"' || c == '\'' || (c == '`' && (lang == LangJavaScript || lang == LangGo)):
			end := stringEnd(source, i+1, c)
			wipe(i+1, end)
			i = end + 1

		default:
			i++
		}
	}
	return out
}

// stringEnd finds the closing quote, honouring backslash escapes. Ordinary
// quotes stop at end of line so a stray apostrophe cannot swallow the file.
func stringEnd(source []byte, from int, quote byte) int {
	for i := from; i < len(source); i++ {
		switch source[i] {
		case '\\':
			if quote != '`' {
				i++
			}
		case '\n':
			if quote != '`' {
				return i
			}
		case quote:
			return i
		}
	}
	return len(source)
}

func lineEnd(source []byte, from int) int {
	for i := from; i < len(source); i++ {
		if source[i] == '\n' {
			return i
		}
	}
	return len(source)
}

func indexFrom(source []byte, from int, delim string) int {
	for i := from; i+len(delim) <= len(source); i++ {
		if string(source[i:i+len(delim)]) == delim {
			return i
		}
	}
	return -1
}

// hasTokens reports whether anything but whitespace survives blanking.
func hasTokens(blanked []byte) bool {
	for _, c := range blanked {
		switch c {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return true
		}
	}
	return false
}
