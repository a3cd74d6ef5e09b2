package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordtrail/internal/ai"
	"wordtrail/internal/cache"
	"wordtrail/internal/config"
	"wordtrail/internal/database"
	"wordtrail/internal/handlers"
	"wordtrail/internal/repository"
	"wordtrail/internal/security"
	"wordtrail/internal/service"
	"wordtrail/internal/speech"
	"wordtrail/internal/state"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Local store
	db, err := database.Initialize(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Local store ready")

	// Remote store for sync, optional
	var remote *database.DB
	if cfg.RemoteDBType != "" {
		remote, err = database.InitializeRemote(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize remote store: %v", err)
		}
		defer remote.Close()

		if err := remote.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run remote migrations: %v", err)
		}

		log.Printf("Remote store ready (type: %s)", cfg.RemoteDBType)
	} else {
		log.Println("No remote store configured, sync disabled")
	}

	// Initialize repositories
	wordRepo := repository.NewWordRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	explanationRepo := repository.NewExplanationRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	articleRepo := repository.NewArticleRepository(db)

	// Initialize services
	store := state.NewStore()
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	profileService := service.NewProfileService(profileRepo, tokens, store)
	wordService := service.NewWordService(wordRepo, store)
	reviewService := service.NewReviewService(wordRepo, profileRepo, store)
	backupService := service.NewBackupService(db)

	reminderService, err := service.NewReminderService(cfg.AWSRegion, cfg.ReminderFrom, cfg.ReminderFromName, profileRepo, wordRepo)
	if err != nil {
		log.Fatalf("Failed to initialize reminder service: %v", err)
	}

	var aiClient *ai.Client
	var speechService *speech.Service
	if cfg.OpenAIKey != "" {
		aiClient, err = ai.New(cfg.OpenAIKey, cfg.OpenAIModel, usageRepo)
		if err != nil {
			log.Fatalf("Failed to initialize AI client: %v", err)
		}
		speechService, err = speech.New(cfg.OpenAIKey, cfg.TTSVoice)
		if err != nil {
			log.Fatalf("Failed to initialize speech service: %v", err)
		}
	} else {
		log.Println("No OpenAI key configured, generation and speech disabled")
	}

	audioCache := cache.NewAudioCache(db, cfg.AudioCacheCapacity)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(tokens)
	authHandler := handlers.NewAuthHandler(profileService, oauthProviders, cfg.OAuthRedirectURL, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService, usageRepo)
	wordHandler := handlers.NewWordHandler(wordService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	generateHandler := handlers.NewGenerateHandler(aiClient, wordService, profileService, explanationRepo)
	speechHandler := handlers.NewSpeechHandler(speechService, audioCache)
	syncHandler := handlers.NewSyncHandler(db, remote)
	articleHandler := handlers.NewArticleHandler(articleRepo)
	backupHandler := handlers.NewBackupHandler(backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Profile routes
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profileHandler.Me))
	mux.HandleFunc("PUT /api/profile/languages", middleware.RequireAuth(profileHandler.UpdateLanguages))
	mux.HandleFunc("POST /api/profile/contexts", middleware.RequireAuth(profileHandler.SaveContext))
	mux.HandleFunc("DELETE /api/profile/contexts", middleware.RequireAuth(profileHandler.RemoveContext))
	mux.HandleFunc("GET /api/checkins", middleware.RequireAuth(profileHandler.CheckIns))
	mux.HandleFunc("GET /api/usage", middleware.RequireAuth(profileHandler.Usage))

	// Word routes
	mux.HandleFunc("POST /api/words", middleware.RequireAuth(wordHandler.Create))
	mux.HandleFunc("GET /api/words", middleware.RequireAuth(wordHandler.List))
	mux.HandleFunc("GET /api/words/stats", middleware.RequireAuth(wordHandler.Stats))
	mux.HandleFunc("GET /api/words/{id}", middleware.RequireAuth(wordHandler.Get))
	mux.HandleFunc("PUT /api/words/{id}/sentences", middleware.RequireAuth(wordHandler.SetSentences))
	mux.HandleFunc("POST /api/words/{id}/learned", middleware.RequireAuth(wordHandler.MarkLearned))
	mux.HandleFunc("DELETE /api/words/{id}", middleware.RequireAuth(wordHandler.Delete))
	mux.HandleFunc("GET /api/words/{id}/explanation", middleware.RequireAuth(generateHandler.Explanation))

	// Review routes
	mux.HandleFunc("GET /api/review/due", middleware.RequireAuth(reviewHandler.Due))
	mux.HandleFunc("POST /api/review/session", middleware.RequireAuth(reviewHandler.StartSession))
	mux.HandleFunc("POST /api/review/{id}/complete", middleware.RequireAuth(reviewHandler.Complete))
	mux.HandleFunc("POST /api/review/{id}/fail", middleware.RequireAuth(reviewHandler.Fail))
	mux.HandleFunc("POST /api/review/{id}/skip", middleware.RequireAuth(reviewHandler.Skip))
	mux.HandleFunc("POST /api/review/finish", middleware.RequireAuth(reviewHandler.Finish))

	// Generation and speech routes
	mux.HandleFunc("POST /api/generate", middleware.RequireAuth(generateHandler.Generate))
	mux.HandleFunc("POST /api/speech/transcribe", middleware.RequireAuth(speechHandler.Transcribe))
	mux.HandleFunc("POST /api/speech/synthesize", middleware.RequireAuth(speechHandler.Synthesize))

	// Sync routes
	mux.HandleFunc("POST /api/sync/push/{resource}", middleware.RequireAuth(syncHandler.Push))
	mux.HandleFunc("POST /api/sync/fetch/{resource}", middleware.RequireAuth(syncHandler.Fetch))

	// Article routes
	mux.HandleFunc("POST /api/articles", middleware.RequireAuth(articleHandler.Create))
	mux.HandleFunc("GET /api/articles", middleware.RequireAuth(articleHandler.List))
	mux.HandleFunc("GET /api/articles/{id}", middleware.RequireAuth(articleHandler.Get))
	mux.HandleFunc("DELETE /api/articles/{id}", middleware.RequireAuth(articleHandler.Delete))

	// Backup routes
	mux.HandleFunc("GET /api/backup/export", middleware.RequireAuth(backupHandler.Export))
	mux.HandleFunc("POST /api/backup/import", middleware.RequireAuth(backupHandler.Import))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start background reminder digests
	if reminderService.IsEnabled() {
		go sendReminderDigests(reminderService)
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// sendReminderDigests periodically emails users their due-word digest
func sendReminderDigests(reminderService *service.ReminderService) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := reminderService.SendAllDigests(ctx, time.Now()); err != nil {
			log.Printf("Error sending reminder digests: %v", err)
		} else {
			log.Println("Reminder digests sent")
		}
		cancel()
	}
}
