package extract

import (
	"yad2_scraper/models"
)

// listingPaths are the nested-key paths that have historically held the
// listings collection, relative to pageProps. Probed in order.
var listingPaths = [][]string{
	{"searchResults", "results"},
	{"feed", "feed"},
	{"items"},
}

// Listings finds the listing records inside a located page payload. The
// payload's shape is not stable across site deployments, so several known
// paths are probed; the first one resolving to an array wins, order
// preserved. No match means no listings, never an error.
func Listings(payload map[string]interface{}) []models.RawListing {
	if payload == nil {
		return nil
	}

	props := pageProps(payload)
	if props == nil {
		return nil
	}

	for _, path := range listingPaths {
		seq, ok := traverse(props, path)
		if !ok {
			continue
		}

		listings := make([]models.RawListing, 0, len(seq))
		for _, item := range seq {
			if record, ok := item.(map[string]interface{}); ok {
				listings = append(listings, models.RawListing(record))
			}
		}
		return listings
	}

	return nil
}

func pageProps(payload map[string]interface{}) map[string]interface{} {
	if props, ok := payload["props"].(map[string]interface{}); ok {
		if page, ok := props["pageProps"].(map[string]interface{}); ok {
			return page
		}
	}
	if page, ok := payload["pageProps"].(map[string]interface{}); ok {
		return page
	}
	return nil
}

func traverse(node map[string]interface{}, path []string) ([]interface{}, bool) {
	for i, key := range path {
		v, ok := node[key]
		if !ok {
			return nil, false
		}

		if i == len(path)-1 {
			seq, ok := v.([]interface{})
			return seq, ok
		}

		node, ok = v.(map[string]interface{})
		if !ok {
			return nil, false
		}
	}
	return nil, false
}
