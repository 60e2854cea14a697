package extract

import (
	"testing"

	"yad2_scraper/models"
)

func TestIsPrivateOwner(t *testing.T) {
	cases := []struct {
		name    string
		listing models.RawListing
		want    bool
	}{
		{
			name:    "merchant type private",
			listing: models.RawListing{"merchantType": "1"},
			want:    true,
		},
		{
			name:    "merchant type agency",
			listing: models.RawListing{"merchantType": "2"},
			want:    false,
		},
		{
			name:    "merchant type beats agency name",
			listing: models.RawListing{"merchantType": "1", "merchantName": "רימקס חיפה"},
			want:    true,
		},
		{
			name:    "numeric merchant type from json",
			listing: models.RawListing{"merchantType": float64(1)},
			want:    true,
		},
		{
			name:    "ad type private",
			listing: models.RawListing{"adType": "1"},
			want:    true,
		},
		{
			name:    "ad type agency",
			listing: models.RawListing{"adType": "3"},
			want:    false,
		},
		{
			name:    "agency keyword in merchant name",
			listing: models.RawListing{"merchantName": "אלון תיווך ונכסים"},
			want:    false,
		},
		{
			name:    "agency keyword in contact name",
			listing: models.RawListing{"contact_name": "משה - אנגלו סכסון"},
			want:    false,
		},
		{
			name:    "plain private name",
			listing: models.RawListing{"contact_name": "דוד לוי"},
			want:    true,
		},
		{
			name:    "no signals defaults to private",
			listing: models.RawListing{"title": "דירה"},
			want:    true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsPrivateOwner(c.listing); got != c.want {
				t.Fatalf("IsPrivateOwner = %v, want %v", got, c.want)
			}
		})
	}
}
