package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardforge-backend/internal/config"
	"cardforge-backend/internal/database"
	"cardforge-backend/internal/handlers"
	"cardforge-backend/internal/middleware"
	"cardforge-backend/internal/repository"
	"cardforge-backend/internal/router"
	"cardforge-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Cardforge Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	deckRepo := repository.NewDeckRepo(pool)

	// ──── Step 5: Initialize Generation Strategy ────
	var llm services.TextGenerator
	var ocr services.ImageTextExtractor
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GenerationModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiClient.Close()
		llm = geminiClient
		if cfg.EnableOCR {
			ocr = geminiClient
		}
		log.Printf("✓ Gemini client initialized (%s)", cfg.GenerationModel)
	} else {
		log.Println("WARNING: GEMINI_API_KEY not set, using offline heuristic generation")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	generatorService := services.NewGeneratorService(llm, time.Duration(cfg.GenerationTimeout)*time.Second)
	researchService := services.NewResearchService(redisClient, cfg.ResearchMaxResults)
	fileExtractService := services.NewFileExtractService(ocr)
	authService := services.NewAuthService(userRepo, jwtAuth)
	deckService := services.NewDeckService(deckRepo)
	pdfService := services.NewPDFService()

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	generateHandler := handlers.NewGenerateHandler(generatorService, researchService, fileExtractService)
	deckHandler := handlers.NewDeckHandler(deckService, pdfService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(jwtAuth, authHandler, generateHandler, deckHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Cardforge Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
