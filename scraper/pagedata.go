package scraper

import (
	"context"
	"log"

	"yad2_scraper/extract"
	"yad2_scraper/zenrows"
)

// PageDataLocator finds the application-state JSON for a rendered listings
// page. Strategies are tried in order; the first success wins. A total miss
// yields an empty payload, never an error: the run completes with zero leads.
type PageDataLocator struct {
	client  Renderer
	baseURL string
}

func NewPageDataLocator(client Renderer, baseURL string) *PageDataLocator {
	return &PageDataLocator{client: client, baseURL: baseURL}
}

type pageDataStrategy struct {
	name string
	run  func(ctx context.Context, html string) map[string]interface{}
}

func (l *PageDataLocator) Locate(ctx context.Context, html string) map[string]interface{} {
	strategies := []pageDataStrategy{
		{name: "inline script", run: l.fromInlineScript},
		{name: "data endpoint", run: l.fromDataEndpoint},
	}

	for _, s := range strategies {
		if payload := s.run(ctx, html); payload != nil {
			log.Printf("Page data located via %s", s.name)
			return payload
		}
	}

	log.Printf("Warning: could not locate page data in HTML (%d bytes)", len(html))
	return map[string]interface{}{}
}

func (l *PageDataLocator) fromInlineScript(_ context.Context, html string) map[string]interface{} {
	return extract.NextData(html)
}

func (l *PageDataLocator) fromDataEndpoint(ctx context.Context, html string) map[string]interface{} {
	dataURL := extract.DataScriptURL(html, l.baseURL)
	if dataURL == "" {
		return nil
	}

	log.Printf("Found data endpoint: %s", dataURL)

	// The endpoint serves plain JSON; no JavaScript rendering needed.
	resp := l.client.Render(ctx, zenrows.RenderRequest{URL: dataURL})
	if resp.HTML == "" {
		return nil
	}

	return extract.ParsePayload(resp.HTML)
}
