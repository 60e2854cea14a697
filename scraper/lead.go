package scraper

import (
	"context"
	"strings"
	"time"

	"yad2_scraper/extract"
	"yad2_scraper/identity"
	"yad2_scraper/models"
)

// LeadBuilder assembles a normalized Lead from a raw listing record.
type LeadBuilder struct {
	phones  *PhoneResolver
	baseURL string
}

func NewLeadBuilder(phones *PhoneResolver, baseURL string) *LeadBuilder {
	return &LeadBuilder{phones: phones, baseURL: baseURL}
}

// Build normalizes every text field, resolves the canonical URL and phone
// number, and stamps the dedup id. Missing fields degrade to empty strings;
// a listing is never rejected here.
func (b *LeadBuilder) Build(ctx context.Context, listing models.RawListing) *models.Lead {
	now := time.Now()

	address := extract.NormalizeText(listing.String("address"))
	listingURL := b.canonicalURL(listing)

	phone := ""
	if listingURL != "" && b.phones != nil {
		phone = b.phones.Resolve(ctx, listingURL)
	}

	return &models.Lead{
		ID:            identity.LeadID(phone, address, now.Format("2006-01-02")),
		ListingID:     listing.FirstString("id", "token"),
		Title:         extract.NormalizeText(listing.String("title")),
		Price:         extract.NormalizeText(listing.String("price")),
		Address:       address,
		PropertyType:  extract.NormalizeText(listing.String("property_type")),
		Description:   extract.NormalizeText(listing.String("description")),
		ApartmentSize: extract.NormalizeText(listing.String("square_meters")),
		RoomsCount:    extract.NormalizeText(listing.String("rooms")),
		PublishDate:   extract.NormalizeText(listing.String("date")),
		OwnerName:     extract.NormalizeText(listing.FirstString("contact_name", "merchantName")),
		PhoneNumber:   phone,
		ListingURL:    listingURL,
		ScrapedAt:     now,
	}
}

// canonicalURL resolves the listing's own page: an absolute link as given, a
// relative path joined to the site base, or the item id as a last resort.
func (b *LeadBuilder) canonicalURL(listing models.RawListing) string {
	if link := listing.FirstString("link", "url"); link != "" {
		if strings.HasPrefix(link, "http") {
			return link
		}
		return strings.TrimSuffix(b.baseURL, "/") + link
	}

	if id := listing.String("id"); id != "" {
		return strings.TrimSuffix(b.baseURL, "/") + "/item/" + id
	}

	return ""
}
