package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/door66/lost-souls/config"
	"github.com/door66/lost-souls/internal/content"
	"github.com/door66/lost-souls/internal/game"
	"github.com/door66/lost-souls/internal/labels"
	"github.com/door66/lost-souls/internal/state"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	writeLabels := flag.Bool("labels", false, "Write QR labels for every clue and exit")
	flag.Parse()

	// Load .env overrides if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	applyEnvOverrides(&cfg)

	// Set up logger
	logger := setupLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	// Load authored content
	library, err := content.Load(cfg.Content.Dir, cfg.Game.MainQuest, logger)
	if err != nil {
		logger.Fatal("Failed to load content", zap.Error(err))
	}

	// Initialize label generator
	labelGen := labels.NewGenerator(cfg.Server.BaseURL, logger)

	// Bulk label mode: write the printable QR set and exit
	if *writeLabels {
		count, err := labelGen.WriteAll(library, cfg.Content.LabelsDir)
		if err != nil {
			logger.Fatal("Failed to write QR labels", zap.Error(err))
		}
		logger.Info("Done", zap.Int("labels", count))
		return
	}

	// Open player-state storage
	store := state.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
	defer store.Close()

	// Initialize hunt manager
	manager := game.NewManager(cfg, library, store)
	manager.SetLogger(logger)

	// Set up HTTP server
	server := setupHTTPServer(cfg, manager, labelGen, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(server, logger)
}

func setupLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, _ := cfg.Build()
	return logger
}

func applyEnvOverrides(cfg *config.Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}
	if dir := os.Getenv("CONTENT_DIR"); dir != "" {
		cfg.Content.Dir = dir
	}
	if path := os.Getenv("STATE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}

func setupHTTPServer(cfg config.Config, manager *game.Manager, labelGen *labels.Generator, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Set up routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Player registration
	router.Post("/players", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		player, err := manager.RegisterPlayer(req.Name)
		if err != nil {
			logger.Error("Failed to register player", zap.Error(err))
			http.Error(w, "Failed to register player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, player)
	})

	// Character selection
	router.Post("/players/{playerID}/character", func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		var req struct {
			CharacterID string `json:"character_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := manager.SelectCharacter(playerID, req.CharacterID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Clue scan: resolve access, record the discovery when unlocked
	router.Get("/clues/{clueID}", func(w http.ResponseWriter, r *http.Request) {
		clueID := chi.URLParam(r, "clueID")
		playerID := r.URL.Query().Get("player")

		result, err := manager.ScanClue(playerID, clueID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	// Octogram bypass
	router.Post("/clues/{clueID}/unlock", func(w http.ResponseWriter, r *http.Request) {
		clueID := chi.URLParam(r, "clueID")

		var req struct {
			PlayerID string `json:"player_id"`
			Code     string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := manager.UnlockClue(req.PlayerID, clueID, req.Code)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	// Quest progress
	router.Get("/players/{playerID}/progress", func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		progress, err := manager.Progress(playerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, progress)
	})

	// Full player reset
	router.Post("/players/{playerID}/reset", func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		if err := manager.ResetPlayer(playerID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Serve clue QR labels
	router.Get("/qrcodes/{clueID}.png", func(w http.ResponseWriter, r *http.Request) {
		clueID := chi.URLParam(r, "clueID")
		if _, ok := manager.Library().Clue(clueID); !ok {
			http.Error(w, "Clue not found", http.StatusNotFound)
			return
		}

		png, err := labelGen.Render(clueID)
		if err != nil {
			logger.Error("Failed to render QR label",
				zap.String("clue_id", clueID),
				zap.Error(err))
			http.Error(w, "Failed to render QR label", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrClueNotFound),
		errors.Is(err, game.ErrCharacterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, game.ErrWrongCode):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, game.ErrNoUnlockCode), errors.Is(err, game.ErrNotPlayable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	// Set up channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Shutting down")
}
