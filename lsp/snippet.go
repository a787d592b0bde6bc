package lsp

import "strings"

// StripSnippetSyntax removes LSP snippet placeholders from completion
// insert text:
//   - "${n}" or "${n:default}" is replaced by default (empty if no colon).
//   - "$n" (bare digits) is removed.
//   - a "$" not followed by "{" or a digit is preserved literally.
//
// Braces nested inside a placeholder's default text are balanced, so a
// default like "${1:foo(${2:bar})}" keeps "foo(${2:bar})" rather than
// cutting at the first closing brace.
func StripSnippetSyntax(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch != '$' {
			out.WriteRune(ch)
			i++
			continue
		}

		switch {
		case i+1 < len(runes) && runes[i+1] == '{':
			i += 2 // consume "${"
			depth := 1
			pastColon := false
			for i < len(runes) && depth > 0 {
				c := runes[i]
				switch {
				case c == '{':
					depth++
					if pastColon {
						out.WriteRune(c)
					}
				case c == '}':
					depth--
					if depth > 0 && pastColon {
						out.WriteRune(c)
					}
				case c == ':' && !pastColon:
					pastColon = true
				default:
					if pastColon {
						out.WriteRune(c)
					}
				}
				i++
			}
		case i+1 < len(runes) && isASCIIDigit(runes[i+1]):
			i++
			for i < len(runes) && isASCIIDigit(runes[i]) {
				i++
			}
		default:
			out.WriteRune(ch)
			i++
		}
	}
	return out.String()
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
