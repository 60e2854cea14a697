package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"yad2_scraper/config"
	"yad2_scraper/models"
	"yad2_scraper/zenrows"
)

type fakeLeadStore struct {
	subscribers []models.Subscriber
	saved       []*models.Lead
	savedFor    []int64
	saveErr     error
}

func (s *fakeLeadStore) SaveLead(_ context.Context, userID int64, lead *models.Lead) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.saved = append(s.saved, lead)
	s.savedFor = append(s.savedFor, userID)
	return int64(len(s.saved)), nil
}

func (s *fakeLeadStore) GetActiveSubscribers(_ context.Context) ([]models.Subscriber, error) {
	return s.subscribers, nil
}

type fakeRunStore struct {
	runs []*models.ScrapeRun
}

func (s *fakeRunStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	copied := *run
	s.runs = append(s.runs, &copied)
	return int64(len(s.runs)), nil
}

func (s *fakeRunStore) UpdateRun(run *models.ScrapeRun) error {
	copied := *run
	s.runs[run.ID-1] = &copied
	return nil
}

func (s *fakeRunStore) Log(_ *int64, _ models.LogLevel, _ string) error { return nil }

type fakeArchiver struct {
	htmlSaves []string
	jsonSaves []string
}

func (a *fakeArchiver) SaveHTML(_ context.Context, _, name, _ string) error {
	a.htmlSaves = append(a.htmlSaves, name)
	return nil
}

func (a *fakeArchiver) SaveJSON(_ context.Context, _, name string, _ interface{}) error {
	a.jsonSaves = append(a.jsonSaves, name)
	return nil
}

func testSearch() *config.SearchConfig {
	return &config.SearchConfig{
		ID:      "haifa_rent",
		Name:    "Haifa rentals",
		URL:     "https://www.yad2.co.il/realestate/rent?city=4000",
		BaseURL: "https://www.yad2.co.il",
	}
}

// searchPageRenderer serves the search-results fixture for the search URL and
// a phone-bearing listing page for everything else.
func searchPageRenderer(t *testing.T, searchURL string) *fakeRenderer {
	t.Helper()

	fixture, err := os.ReadFile(filepath.Join("testdata", "search_page.html"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	return &fakeRenderer{respond: func(req zenrows.RenderRequest) zenrows.RenderResponse {
		if req.URL == searchURL {
			return zenrows.RenderResponse{HTML: string(fixture), StatusCode: 200}
		}
		return zenrows.RenderResponse{HTML: `<div class="viewPhone">0521234567</div>`, StatusCode: 200}
	}}
}

func testPipeline(search *config.SearchConfig, client Renderer, leads *fakeLeadStore, runs *fakeRunStore) *Pipeline {
	resolver := &PhoneResolver{
		client:     client,
		maxRetries: 2,
		delay:      func() time.Duration { return time.Millisecond },
		sleep:      func(time.Duration) {},
	}
	builder := NewLeadBuilder(resolver, search.BaseURL)
	return NewPipeline(search, client, builder, leads, runs, &fakeArchiver{})
}

func TestRunForUser(t *testing.T) {
	search := testSearch()
	client := searchPageRenderer(t, search.URL)
	leads := &fakeLeadStore{}
	runs := &fakeRunStore{}

	p := testPipeline(search, client, leads, runs)
	if err := p.RunForUser(context.Background(), 7); err != nil {
		t.Fatalf("RunForUser: %v", err)
	}

	// fixture holds three listings: one private posted today, one agency,
	// one private with a stale date
	if len(leads.saved) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads.saved))
	}

	lead := leads.saved[0]
	if lead.ListingID != "101" {
		t.Fatalf("wrong listing survived the filters: %s", lead.ListingID)
	}
	if lead.PhoneNumber != "052-123-4567" {
		t.Fatalf("phone not resolved: %q", lead.PhoneNumber)
	}
	if lead.ListingURL != "https://www.yad2.co.il/item/101" {
		t.Fatalf("wrong listing url: %s", lead.ListingURL)
	}
	if lead.Title != "דירת 3 חדרים ברחוב הרצל" {
		t.Fatalf("title not carried over: %q", lead.Title)
	}
	if lead.ID == "" {
		t.Fatalf("lead id not stamped")
	}
	if leads.savedFor[0] != 7 {
		t.Fatalf("lead saved for wrong user: %d", leads.savedFor[0])
	}

	if len(runs.runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(runs.runs))
	}
	run := runs.runs[0]
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("run status = %s", run.Status)
	}
	if run.FinishedAt == nil {
		t.Fatalf("run not finished")
	}
	if run.ListingsFound != 3 || run.PrivateToday != 1 || run.LeadsSaved != 1 || run.PhonesResolved != 1 {
		t.Fatalf("counters off: %+v", run)
	}
	if run.ErrorsCount != 0 {
		t.Fatalf("unexpected errors: %d", run.ErrorsCount)
	}
}

func TestRunForUserEmptyRender(t *testing.T) {
	search := testSearch()
	client := &fakeRenderer{respond: func(req zenrows.RenderRequest) zenrows.RenderResponse {
		return zenrows.RenderResponse{HTML: "", StatusCode: 500, Err: "rate limited or unavailable: 429"}
	}}
	leads := &fakeLeadStore{}
	runs := &fakeRunStore{}

	p := testPipeline(search, client, leads, runs)
	if err := p.RunForUser(context.Background(), 7); err != nil {
		t.Fatalf("empty render must not fail the run: %v", err)
	}

	if len(leads.saved) != 0 {
		t.Fatalf("no leads expected")
	}
	run := runs.runs[0]
	if run.ErrorsCount != 1 || run.ListingsFound != 0 {
		t.Fatalf("counters off: %+v", run)
	}
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("run must still complete, got %s", run.Status)
	}
}

func TestRunForUserSaveFailureCounted(t *testing.T) {
	search := testSearch()
	client := searchPageRenderer(t, search.URL)
	leads := &fakeLeadStore{saveErr: fmt.Errorf("connection refused")}
	runs := &fakeRunStore{}

	p := testPipeline(search, client, leads, runs)
	if err := p.RunForUser(context.Background(), 7); err != nil {
		t.Fatalf("a save failure must not abort the run: %v", err)
	}

	run := runs.runs[0]
	if run.ErrorsCount != 1 || run.LeadsSaved != 0 {
		t.Fatalf("counters off: %+v", run)
	}
	// the listing still counted as private-today before the save failed
	if run.PrivateToday != 1 {
		t.Fatalf("PrivateToday = %d", run.PrivateToday)
	}
}

func TestRunAll(t *testing.T) {
	search := testSearch()
	client := searchPageRenderer(t, search.URL)
	leads := &fakeLeadStore{subscribers: []models.Subscriber{
		{UserID: 1, Email: "a@example.com"},
		{UserID: 2, Email: "b@example.com"},
	}}
	runs := &fakeRunStore{}

	p := testPipeline(search, client, leads, runs)
	if err := p.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if len(runs.runs) != 2 {
		t.Fatalf("expected a run per subscriber, got %d", len(runs.runs))
	}
	if len(leads.saved) != 2 {
		t.Fatalf("expected a lead per subscriber, got %d", len(leads.saved))
	}
	if leads.savedFor[0] == leads.savedFor[1] {
		t.Fatalf("leads saved for the same user twice")
	}
}

func TestRunAllNoSubscribers(t *testing.T) {
	search := testSearch()
	client := &fakeRenderer{respond: func(req zenrows.RenderRequest) zenrows.RenderResponse {
		t.Fatalf("no subscribers means no rendering")
		return zenrows.RenderResponse{}
	}}
	runs := &fakeRunStore{}

	p := testPipeline(search, client, &fakeLeadStore{}, runs)
	if err := p.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(runs.runs) != 0 {
		t.Fatalf("no runs expected")
	}
}

func TestBuildLead(t *testing.T) {
	builder := NewLeadBuilder(nil, "https://www.yad2.co.il")

	lead := builder.Build(context.Background(), models.RawListing{
		"id":           "205",
		"title":        "  דירה   מרווחת ",
		"price":        "4,000 ₪",
		"address":      "בן גוריון 5, חיפה",
		"rooms":        float64(3),
		"date":         "היום",
		"contact_name": "יעל",
		"link":         "/item/205",
	})

	if lead.Title != "דירה מרווחת" {
		t.Fatalf("title not normalized: %q", lead.Title)
	}
	if lead.RoomsCount != "3" {
		t.Fatalf("numeric rooms not coerced: %q", lead.RoomsCount)
	}
	if lead.ListingURL != "https://www.yad2.co.il/item/205" {
		t.Fatalf("relative link not absolutized: %s", lead.ListingURL)
	}
	if lead.OwnerName != "יעל" {
		t.Fatalf("owner name: %q", lead.OwnerName)
	}
	if lead.ScrapedAt.IsZero() {
		t.Fatalf("scraped-at not stamped")
	}
}
