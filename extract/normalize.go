package extract

import (
	"regexp"
	"strings"
)

var (
	extraSpacesRe = regexp.MustCompile(`\s+`)
	// Keep letters (Hebrew included), digits and common punctuation; drop
	// control characters and the odd glyphs Yad2 sprinkles into titles.
	strangeCharsRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,\-:;()\[\]{}?!/\\'"+=*&^%$#@~` + "`" + `|]`)
	nonDigitRe     = regexp.MustCompile(`\D`)
)

// NormalizeText collapses whitespace, strips disallowed characters and trims.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = extraSpacesRe.ReplaceAllString(text, " ")
	text = strangeCharsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// NormalizePhone canonicalizes an Israeli phone number. Anything that does
// not reduce to 9 or 10 digits is rejected outright rather than partially
// formatted.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	digits := nonDigitRe.ReplaceAllString(phone, "")

	switch len(digits) {
	case 10:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	case 9:
		return digits[:2] + "-" + digits[2:5] + "-" + digits[5:]
	default:
		return ""
	}
}
