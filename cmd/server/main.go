package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kainolt/backend/config"
	httpDelivery "github.com/kainolt/backend/internal/delivery/http"
	"github.com/kainolt/backend/internal/infrastructure/flyerfetch"
	"github.com/kainolt/backend/internal/infrastructure/pdftext"
	"github.com/kainolt/backend/internal/repository"
	"github.com/kainolt/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting KainoLT Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	repo := repository.NewMemoryRepository()

	// No OCR engine is wired here; pages below the coverage threshold fall
	// back to whatever embedded text they carry. Plug a tesseract wrapper
	// into NewAcquirer to enable the OCR path.
	acquirer := pdftext.NewAcquirer(pdftext.PlainExtractor{}, nil, pdftext.Config{
		CoverageThreshold: cfg.Extraction.CoverageThreshold,
		PageTimeout:       cfg.Extraction.PageTimeout,
		MaxOCRPages:       cfg.Extraction.MaxOCRPages,
	})
	log.Printf("Extraction: coverage threshold=%d chars, page timeout=%s, OCR engine not configured",
		cfg.Extraction.CoverageThreshold, cfg.Extraction.PageTimeout)

	analyzer := usecase.NewAnalyzer(repo, acquirer, usecase.AnalyzerConfig{
		Extraction:   usecase.DefaultExtractionConfig(),
		StopFraction: cfg.Cart.BudgetStopFraction,
	})

	fetcher := flyerfetch.NewClient(flyerfetch.Config{
		RequestTimeout: cfg.Fetch.RequestTimeout,
		RatePerSecond:  cfg.Fetch.RatePerSecond,
		Burst:          cfg.Fetch.Burst,
	})
	log.Printf("Fetch: rate=%.2f req/s, burst=%d, timeout=%s",
		cfg.Fetch.RatePerSecond, cfg.Fetch.Burst, cfg.Fetch.RequestTimeout)

	handler := httpDelivery.NewHandler(analyzer, fetcher)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
