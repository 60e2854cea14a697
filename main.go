package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"yad2_scraper/config"
	"yad2_scraper/logging"
	"yad2_scraper/scheduler"
	"yad2_scraper/scraper"
	"yad2_scraper/storage"
	"yad2_scraper/zenrows"
)

var (
	scrapeNow = flag.Bool("scrape", false, "Run scrape once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogsDir)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting yad2_scraper...")
	log.Printf("Loaded %d search configs", len(cfg.Searches))
	for id, search := range cfg.Searches {
		log.Printf("  - %s (%s)", search.Name, id)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	var uploader *storage.S3Uploader
	if cfg.Archive.S3Bucket != "" {
		uploader, err = storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.Archive.S3Bucket,
			Region:          cfg.Archive.S3Region,
			Endpoint:        cfg.Archive.S3Endpoint,
			AccessKeyID:     cfg.Archive.S3AccessKeyID,
			SecretAccessKey: cfg.Archive.S3SecretKey,
		})
		if err != nil {
			log.Printf("Warning: S3 archive disabled: %v", err)
			uploader = nil
		} else {
			log.Printf("Archiving snapshots to s3://%s", cfg.Archive.S3Bucket)
		}
	}
	archive := storage.NewArchive(cfg.Archive.DataDir, uploader)

	var pipelines []*scraper.Pipeline
	for _, search := range cfg.Searches {
		client := zenrows.New(cfg.ZenRows, search.ProxyCountry)
		resolver := scraper.NewPhoneResolver(client, cfg.ZenRows)
		builder := scraper.NewLeadBuilder(resolver, search.BaseURL)
		pipelines = append(pipelines, scraper.NewPipeline(search, client, builder, pgStore, sqliteStore, archive))
	}

	sched := scheduler.New(cfg, pipelines)

	if *scrapeNow {
		log.Println("Running scrape...")
		sched.RunAll(ctx)
		log.Println("Scrape complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}
