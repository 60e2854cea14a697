package scraper

import (
	"context"

	"yad2_scraper/zenrows"
)

// Renderer is the remote rendering boundary the pipeline depends on. The
// production implementation is *zenrows.Client; tests substitute fakes.
type Renderer interface {
	Render(ctx context.Context, req zenrows.RenderRequest) zenrows.RenderResponse
}
