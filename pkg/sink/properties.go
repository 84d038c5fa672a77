package sink

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// PropertiesFile merges assignments into a Java properties file, creating it
// when absent. Unrelated keys survive a write; keys are emitted in sorted order
// so repeated runs produce stable diffs.
//
// The codec covers the common single-line subset of the properties format: '='
// and ':' separators, '#' and '!' comments, and backslash escapes. Line
// continuations and \uXXXX escapes are not interpreted.
type PropertiesFile struct {
	Path string
}

func (p PropertiesFile) Apply(key, value string) error {
	props := map[string]string{}

	data, err := os.ReadFile(p.Path)
	switch {
	case err == nil:
		props = parseProperties(string(data))
	case !os.IsNotExist(err):
		return fmt.Errorf("read properties file: %w", err)
	}

	props[key] = value

	if err := os.WriteFile(p.Path, []byte(encodeProperties(props)), 0o644); err != nil {
		return fmt.Errorf("write properties file: %w", err)
	}
	return nil
}

func parseProperties(data string) map[string]string {
	props := map[string]string{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
			continue
		}
		key, value := splitPropertyLine(trimmed)
		if key != "" {
			props[key] = value
		}
	}
	return props
}

// splitPropertyLine splits on the first unescaped '=' or ':' and unescapes both
// halves. A line without a separator is a key with an empty value.
func splitPropertyLine(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++ // skip the escaped character
		case '=', ':':
			return unescapeProperty(strings.TrimRight(line[:i], " \t")),
				unescapeProperty(strings.TrimLeft(line[i+1:], " \t"))
		}
	}
	return unescapeProperty(line), ""
}

func unescapeProperty(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func encodeProperties(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(escapeKey(k))
		b.WriteByte('=')
		b.WriteString(escapeValue(props[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

func escapeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', ' ', '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func escapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case ' ':
			// Only a leading space needs the escape; read-side trimming stops
			// at the first value byte.
			if i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
