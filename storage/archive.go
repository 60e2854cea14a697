package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive persists raw HTML/JSON snapshots per run, keyed by date, to local
// disk and optionally to S3. Every method is best-effort: archival failure
// must never abort extraction.
type Archive struct {
	dataDir  string
	uploader *S3Uploader // nil when S3 is not configured
}

func NewArchive(dataDir string, uploader *S3Uploader) *Archive {
	return &Archive{dataDir: dataDir, uploader: uploader}
}

func (a *Archive) SaveHTML(ctx context.Context, runKey, name, html string) error {
	if html == "" {
		return nil
	}
	return a.save(ctx, "html", runKey, name, []byte(html), "text/html; charset=utf-8")
}

func (a *Archive) SaveJSON(ctx context.Context, runKey, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return a.save(ctx, "json", runKey, name, data, "application/json")
}

func (a *Archive) save(ctx context.Context, kind, runKey, name string, data []byte, contentType string) error {
	date := time.Now().Format("2006-01-02")
	dir := filepath.Join(a.dataDir, "raw", kind, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	prefix := runKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	filename := prefix + "_" + name
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if a.uploader != nil {
		key := strings.Join([]string{"raw", kind, date, filename}, "/")
		if err := a.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			// local copy exists, so only complain
			log.Printf("Warning: S3 upload of %s failed: %v", key, err)
		}
	}

	return nil
}
