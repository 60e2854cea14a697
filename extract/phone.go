package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// phoneRe matches Israeli phone numbers as they appear in raw markup.
var phoneRe = regexp.MustCompile(`0[2-9][0-9]{7,8}`)

// PhoneFromHTML extracts a normalized phone number from a rendered listing
// page: first a plain regex pass over the markup, then the elements the site
// reveals the number in after the "show phone" click. Returns "" when
// nothing usable is found.
func PhoneFromHTML(html string) string {
	if html == "" {
		return ""
	}

	if m := phoneRe.FindString(html); m != "" {
		if phone := NormalizePhone(m); phone != "" {
			return phone
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var found string
	doc.Find(`.viewPhone, .phone-number, [data-phone]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := s.Text(); text != "" {
			if m := phoneRe.FindString(text); m != "" {
				if phone := NormalizePhone(m); phone != "" {
					found = phone
					return false
				}
			}
		}
		if attr, ok := s.Attr("data-phone"); ok && attr != "" {
			if phone := NormalizePhone(attr); phone != "" {
				found = phone
				return false
			}
		}
		return true
	})

	return found
}
