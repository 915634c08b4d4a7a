package diagnosis

import "strings"

// formatTemplate substitutes {name} fields in tmpl from vars. "{{" and "}}"
// are literal braces and a ":format" or "!conversion" suffix on a field is ignored.
// If any field is missing from vars or the template is malformed, tmpl is
// returned unchanged: there is no partial substitution.
func formatTemplate(tmpl string, vars map[string]string) string {
	if !strings.ContainsAny(tmpl, "{}") {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return tmpl
			}
			name := tmpl[i+1 : i+1+end]
			if j := strings.IndexAny(name, ":!"); j >= 0 {
				name = name[:j]
			}
			v, ok := vars[name]
			if !ok {
				return tmpl
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return tmpl
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
