package extract

import (
	"strings"

	"yad2_scraper/models"
)

// agencyIndicators are substrings that mark a merchant or contact name as a
// real estate agency. Matching is deliberately case-sensitive and
// unnormalized: these are the exact spellings seen in the wild.
var agencyIndicators = []string{
	"תיווך",
	"נדל\"ן",
	"רימקס",
	"רי/מקס",
	"סנצ'ורי",
	"אנגלו סכסון",
}

// IsPrivateOwner decides whether a listing comes from a private owner rather
// than an agency. When the record carries an explicit merchant or ad type,
// that wins. Otherwise the name fields are checked against the agency
// denylist. Unknown means private: dropping a genuine owner lead costs more
// than letting the occasional agency through.
func IsPrivateOwner(listing models.RawListing) bool {
	if merchantType := listing.String("merchantType"); merchantType != "" {
		return merchantType == "1"
	}

	if adType := listing.String("adType"); adType != "" {
		return adType == "1"
	}

	merchantName := listing.String("merchantName")
	contactName := listing.String("contact_name")
	for _, indicator := range agencyIndicators {
		if merchantName != "" && strings.Contains(merchantName, indicator) {
			return false
		}
		if contactName != "" && strings.Contains(contactName, indicator) {
			return false
		}
	}

	return true
}
