package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var nextDataRe = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)

// NextData pulls the application-state JSON blob embedded in the page and
// parses it. Returns nil when the blob is absent or malformed.
func NextData(html string) map[string]interface{} {
	if html == "" {
		return nil
	}

	m := nextDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
		return nil
	}
	return payload
}

// DataScriptURL finds a script tag pointing at the page's data endpoint and
// returns the absolute URL to fetch it from, or "" when no such tag exists.
func DataScriptURL(html, baseURL string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, ok := doc.Find(`script[src*="/_next/data/"]`).First().Attr("src")
	if !ok || src == "" {
		return ""
	}

	if strings.HasPrefix(src, "http") {
		return src
	}
	return strings.TrimSuffix(baseURL, "/") + src
}

// ParsePayload decodes a fetched data-endpoint body. The result is accepted
// only if it looks like the page-state shape (a pageProps top-level key);
// anything else is a bot-wall page or an error body.
func ParsePayload(body string) map[string]interface{} {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil
	}
	if _, ok := payload["pageProps"]; !ok {
		return nil
	}
	return payload
}
