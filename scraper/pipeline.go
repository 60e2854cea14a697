package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"yad2_scraper/config"
	"yad2_scraper/extract"
	"yad2_scraper/models"
	"yad2_scraper/zenrows"
)

// LeadStore is the persistence collaborator leads are handed to.
type LeadStore interface {
	SaveLead(ctx context.Context, userID int64, lead *models.Lead) (int64, error)
	GetActiveSubscribers(ctx context.Context) ([]models.Subscriber, error)
}

// RunStore records run outcomes and operational logs.
type RunStore interface {
	CreateRun(run *models.ScrapeRun) (int64, error)
	UpdateRun(run *models.ScrapeRun) error
	Log(runID *int64, level models.LogLevel, message string) error
}

// Archiver persists raw page snapshots, best-effort.
type Archiver interface {
	SaveHTML(ctx context.Context, runKey, name, html string) error
	SaveJSON(ctx context.Context, runKey, name string, v interface{}) error
}

// Pipeline turns one configured search page into saved leads: render the
// page, locate the embedded state JSON, find the listings, keep private
// owners posted today, normalize, persist. Strictly sequential; the remote
// service's rate budget is the bottleneck, not CPU.
type Pipeline struct {
	search  *config.SearchConfig
	client  Renderer
	pages   *PageDataLocator
	builder *LeadBuilder
	leads   LeadStore
	runs    RunStore
	archive Archiver
}

func NewPipeline(search *config.SearchConfig, client Renderer, builder *LeadBuilder, leads LeadStore, runs RunStore, archive Archiver) *Pipeline {
	return &Pipeline{
		search:  search,
		client:  client,
		pages:   NewPageDataLocator(client, search.BaseURL),
		builder: builder,
		leads:   leads,
		runs:    runs,
		archive: archive,
	}
}

// RunAll executes the pipeline once for every active subscriber. A failed
// subscriber run never aborts the loop.
func (p *Pipeline) RunAll(ctx context.Context) error {
	subscribers, err := p.leads.GetActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("get active subscribers: %w", err)
	}

	if len(subscribers) == 0 {
		log.Println("No active subscribers, skipping run")
		return nil
	}

	log.Printf("Running %s for %d subscribers", p.search.Name, len(subscribers))

	for _, sub := range subscribers {
		if err := p.RunForUser(ctx, sub.UserID); err != nil {
			log.Printf("Error running pipeline for user %d: %v", sub.UserID, err)
		}
	}

	return nil
}

// RunForUser is one full extraction pass. Everything short of a storage
// failure on the run record itself is folded into counters and logs.
func (p *Pipeline) RunForUser(ctx context.Context, userID int64) error {
	run := &models.ScrapeRun{
		RunKey:    uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	runID, err := p.runs.CreateRun(run)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	run.ID = runID

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if run.Status == models.RunStatusRunning {
			run.Status = models.RunStatusCompleted
		}
		if err := p.runs.UpdateRun(run); err != nil {
			log.Printf("Warning: failed to update run %d: %v", run.ID, err)
		}
	}()

	p.log(run, models.LogLevelInfo, fmt.Sprintf("Starting scrape of %s for user %d", p.search.Name, userID))

	resp := p.client.Render(ctx, zenrows.RenderRequest{
		URL:          p.search.URL,
		JSRender:     true,
		ProxyCountry: p.search.ProxyCountry,
	})

	if resp.HTML != "" {
		if err := p.archive.SaveHTML(ctx, run.RunKey, "search_page.html", resp.HTML); err != nil {
			log.Printf("Warning: failed to archive HTML: %v", err)
		}
	}
	if err := p.archive.SaveJSON(ctx, run.RunKey, "render_response.json", resp); err != nil {
		log.Printf("Warning: failed to archive render response: %v", err)
	}

	if resp.HTML == "" {
		run.ErrorsCount++
		p.log(run, models.LogLevelWarn, fmt.Sprintf("Search page render returned no HTML (status %d): %s", resp.StatusCode, resp.Err))
		return nil
	}

	payload := p.pages.Locate(ctx, resp.HTML)
	if len(payload) > 0 {
		if err := p.archive.SaveJSON(ctx, run.RunKey, "page_data.json", payload); err != nil {
			log.Printf("Warning: failed to archive page data: %v", err)
		}
	}

	listings := extract.Listings(payload)
	run.ListingsFound = len(listings)
	p.log(run, models.LogLevelInfo, fmt.Sprintf("Found %d listings", len(listings)))

	for _, listing := range listings {
		if err := p.processListing(ctx, run, userID, listing); err != nil {
			run.ErrorsCount++
			p.log(run, models.LogLevelError, fmt.Sprintf("Listing error: %v", err))
		}
	}

	p.log(run, models.LogLevelInfo, fmt.Sprintf(
		"Completed: %d listings, %d private posted today, %d leads saved, %d errors",
		run.ListingsFound, run.PrivateToday, run.LeadsSaved, run.ErrorsCount))

	return nil
}

func (p *Pipeline) processListing(ctx context.Context, run *models.ScrapeRun, userID int64, listing models.RawListing) error {
	// Ownership decides the skip before the date check runs; it is the
	// cheaper test and the filters are not commutative for counters.
	if !extract.IsPrivateOwner(listing) {
		return nil
	}

	if !extract.IsToday(listing.String("date")) {
		return nil
	}

	run.PrivateToday++

	lead := p.builder.Build(ctx, listing)
	if lead.PhoneNumber != "" {
		run.PhonesResolved++
	}

	if _, err := p.leads.SaveLead(ctx, userID, lead); err != nil {
		return fmt.Errorf("save lead %s: %w", lead.ID, err)
	}
	run.LeadsSaved++

	return nil
}

func (p *Pipeline) log(run *models.ScrapeRun, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, p.search.ID, message)
	if err := p.runs.Log(&run.ID, level, message); err != nil {
		log.Printf("Warning: failed to persist log: %v", err)
	}
}
