package models

import (
	"time"
)

// Lead is a normalized rental listing from a private owner, ready for the CRM.
type Lead struct {
	ID            string    `json:"id" db:"id"`                         // dedup hash of phone|address|date
	ListingID     string    `json:"listing_id" db:"listing_id"`         // source site's own identifier
	Title         string    `json:"title" db:"title"`
	Price         string    `json:"price" db:"price"`
	Address       string    `json:"address" db:"address"`
	PropertyType  string    `json:"property_type" db:"property_type"`
	Description   string    `json:"description" db:"description"`
	ApartmentSize string    `json:"apartment_size" db:"apartment_size"`
	RoomsCount    string    `json:"rooms_count" db:"rooms_count"`
	PublishDate   string    `json:"publish_date" db:"publish_date"`
	OwnerName     string    `json:"owner_name" db:"owner_name"`
	PhoneNumber   string    `json:"phone_number" db:"phone_number"` // may be empty
	ListingURL    string    `json:"listing_url" db:"listing_url"`
	ScrapedAt     time.Time `json:"scraped_at" db:"scraped_at"`
}

// Subscriber is a CRM user with an active subscription.
type Subscriber struct {
	UserID        int64  `json:"user_id" db:"user_id"`
	Email         string `json:"email" db:"email"`
	WhatsappReady bool   `json:"whatsapp_ready" db:"whatsapp_ready"`
}
