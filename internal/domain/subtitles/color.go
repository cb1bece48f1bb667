package subtitles

import (
	"fmt"
	"strings"
)

// backgroundAlpha is the alpha byte applied to background boxes; every other
// colour is written fully opaque.
const backgroundAlpha = "80"

// ParseHexColor validates a 6-digit RGB colour (optionally '#'-prefixed) and
// returns it upper-cased without the prefix.
func ParseHexColor(s string) (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return "", fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return "", fmt.Errorf("colour %q: invalid hex digit %q", s, r)
		}
	}
	return strings.ToUpper(v), nil
}

// assColor converts RGB hex into the ASS &HAABBGGRR form.
func assColor(rgb, alpha string) (string, error) {
	v, err := ParseHexColor(rgb)
	if err != nil {
		return "", err
	}
	return "&H" + alpha + v[4:6] + v[2:4] + v[0:2], nil
}

// DecodeColor reverses assColor and returns the RGB hex digits.
func DecodeColor(field string) (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(field), "&H")
	if len(v) != 8 {
		return "", fmt.Errorf("ass colour %q: want &HAABBGGRR", field)
	}
	bgr := v[2:]
	return ParseHexColor(bgr[4:6] + bgr[2:4] + bgr[0:2])
}
