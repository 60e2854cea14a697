package scraper

import (
	"context"
	"log"
	"time"

	"yad2_scraper/config"
	"yad2_scraper/extract"
	"yad2_scraper/zenrows"
)

// revealInstructions simulate the user clicking the "show phone" control,
// which is the only way the site exposes the number client-side.
var revealInstructions = []zenrows.Instruction{
	{Wait: 2000},
	{Click: ".viewPhone"},
	{Wait: 2000},
}

// PhoneResolver obtains a listing's phone number through a cascade of render
// strategies: a plain page render first, then bounded repeats of an
// interaction replay. Exhaustion yields "" and the lead ships without a
// phone.
type PhoneResolver struct {
	client     Renderer
	maxRetries int

	// injectable for tests
	delay func() time.Duration
	sleep func(time.Duration)
}

func NewPhoneResolver(client Renderer, cfg config.ZenRowsConfig) *PhoneResolver {
	return &PhoneResolver{
		client:     client,
		maxRetries: cfg.PhoneMaxRetries,
		delay: func() time.Duration {
			return zenrows.RandomDelay(cfg.MinDelay, cfg.MaxDelay)
		},
		sleep: time.Sleep,
	}
}

// Resolve issues at most 1 + maxRetries render calls for the listing URL.
func (r *PhoneResolver) Resolve(ctx context.Context, listingURL string) string {
	if phone := r.fromPlainRender(ctx, listingURL); phone != "" {
		return phone
	}

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		log.Printf("Phone: attempt %d/%d with click replay for %s", attempt, r.maxRetries, listingURL)

		if phone := r.fromClickReplay(ctx, listingURL); phone != "" {
			return phone
		}

		if attempt < r.maxRetries {
			r.sleep(r.delay())
		}
	}

	log.Printf("Warning: no phone number for %s after %d attempts", listingURL, 1+r.maxRetries)
	return ""
}

func (r *PhoneResolver) fromPlainRender(ctx context.Context, listingURL string) string {
	resp := r.client.Render(ctx, zenrows.RenderRequest{
		URL:      listingURL,
		JSRender: true,
	})
	return extract.PhoneFromHTML(resp.HTML)
}

func (r *PhoneResolver) fromClickReplay(ctx context.Context, listingURL string) string {
	resp := r.client.Render(ctx, zenrows.RenderRequest{
		URL:          listingURL,
		JSRender:     true,
		Instructions: revealInstructions,
		Outputs:      "phone_numbers",
	})

	// The service can hand the number back directly when asked for the
	// phone_numbers output; fall back to scraping the clicked markup.
	for _, raw := range resp.PhoneNumbers {
		if phone := extract.NormalizePhone(raw); phone != "" {
			return phone
		}
	}
	return extract.PhoneFromHTML(resp.HTML)
}
