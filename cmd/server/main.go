package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trax/internal/api"
	"trax/internal/config"
	"trax/internal/glossary"
	"trax/internal/sampler"
	"trax/internal/transcript"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	flag.StringVar(&cfg.WordsFile, "utts", cfg.WordsFile, "word list JSON file (-u)")
	flag.StringVar(&cfg.WordsFile, "u", cfg.WordsFile, "word list JSON file")
	flag.StringVar(&cfg.TermsFile, "terms", cfg.TermsFile, "terms JSON file (-t)")
	flag.StringVar(&cfg.TermsFile, "t", cfg.TermsFile, "terms JSON file")
	flag.StringVar(&cfg.Port, "port", cfg.Port, "port to listen on (-p)")
	flag.StringVar(&cfg.Port, "p", cfg.Port, "port to listen on")
	flag.StringVar(&cfg.TaskProfile, "profile", cfg.TaskProfile, "task profile: short|long or one from SAMPLER_PROFILES_FILE")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	samplerCfg, err := cfg.Sampler()
	if err != nil {
		log.Fatalf("Invalid sampler configuration: %v", err)
	}

	tr, err := transcript.LoadFile(cfg.WordsFile)
	if err != nil {
		log.Fatalf("Failed to load word list: %v", err)
	}
	log.Printf("Loaded %d words (%.1fs) from %s", tr.Len(), tr.Duration(), cfg.WordsFile)

	s, err := sampler.New(tr, samplerCfg)
	if err != nil {
		log.Fatalf("Failed to create sampler: %v", err)
	}
	log.Printf("Sampling %q tasks: body %.0f-%.0fs, context %.0f-%.0fs, kinds %v", cfg.TaskProfile,
		samplerCfg.MinTaskDuration, samplerCfg.MaxTaskDuration, samplerCfg.MinContextPad, samplerCfg.MaxContextPad, samplerCfg.Kinds)

	terms := glossary.NewStore(cfg.TermsFile)
	if err := terms.Load(); err != nil {
		log.Fatalf("Failed to load glossary: %v", err)
	}
	log.Printf("Loaded %d glossary terms from %s", len(terms.Terms()), cfg.TermsFile)

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(api.CORSMiddleware())
	api.NewServer(s, terms, cfg.AudioURL).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		if err := terms.Watch(ctx); err != nil {
			log.Printf("[Glossary] Watcher stopped: %v", err)
		}
	}()

	go func() {
		log.Printf("Trax task server running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown server: %v", err)
	}
}
