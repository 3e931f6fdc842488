package dict

import (
	"strconv"
	"strings"
)

// Rebind converts the canonical ? markers of query to the placeholder
// style of the product. Markers inside quoted text are left alone.
func (d *Dictionary) Rebind(query string) string {
	var prefix string
	switch d.Capabilities().Placeholder {
	case PlaceholderDollar:
		prefix = "$"
	case PlaceholderAtP:
		prefix = "@p"
	case PlaceholderColon:
		prefix = ":"
	default:
		return query
	}
	var (
		sb    strings.Builder
		n     int
		quote byte
	)
	sb.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '?':
			n++
			sb.WriteString(prefix)
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}
