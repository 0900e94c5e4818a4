package filter

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

// normalizeColor converts "#rgb", "#rrggbb" or a CSS color name to a
// lower-case "#rrggbb". Empty stays empty.
func normalizeColor(name, color string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(color))
	if c == "" {
		return "", nil
	}

	if strings.HasPrefix(c, "#") {
		hex := c[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 && isHex(hex) {
			return "#" + hex, nil
		}
		return "", &InvalidColorError{Filter: name, Color: color}
	}

	rgba, ok := colornames.Map[c]
	if !ok {
		return "", &InvalidColorError{Filter: name, Color: color}
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B), nil
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
