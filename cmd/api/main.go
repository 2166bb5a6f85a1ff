package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kavyanshpal/kpchat/internal/config"
	"github.com/kavyanshpal/kpchat/internal/handler"
	"github.com/kavyanshpal/kpchat/internal/service/ai"
	"github.com/kavyanshpal/kpchat/internal/service/auth"
	"github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/exchange"
	"github.com/kavyanshpal/kpchat/internal/service/prefs"
	"github.com/kavyanshpal/kpchat/internal/service/render"
	"github.com/kavyanshpal/kpchat/internal/service/speech"
	"github.com/kavyanshpal/kpchat/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("path", cfg.Storage.Path), zap.Error(err))
	}
	defer db.Close()

	authSvc := auth.NewService(db)
	chatSvc := chat.NewService(db)
	prefsSvc := prefs.NewService(db)
	renderer := render.New()

	completer := buildCompleter(ctx, cfg.AI, logger)

	var speechSvc *speech.Service
	if cfg.Speech.Enabled {
		adapter, err := speech.NewGeminiAdapter(ctx, cfg.Speech)
		if err != nil {
			logger.Warn("speech adapter unavailable", zap.Error(err))
		} else {
			speechSvc = speech.NewService(adapter, adapter, logger)
			logger.Info("speech service initialized",
				zap.String("asr_model", cfg.Speech.ASRModel),
				zap.String("tts_model", cfg.Speech.TTSModel))
		}
	} else {
		logger.Info("speech credentials not configured, voice features disabled")
	}

	var controller *exchange.Controller
	if completer != nil {
		var speaker exchange.Speaker
		if speechSvc != nil {
			speaker = speechSvc
		}
		controller = exchange.NewController(authSvc, chatSvc, prefsSvc, completer, speaker, cfg.AI.Timeout, logger)
	}

	router := handler.NewRouter(authSvc, chatSvc, prefsSvc, controller, speechSvc, renderer, logger)

	startServer(ctx, cfg.Server, router, logger)
}

// buildCompleter returns nil when no provider is configured; chat endpoints
// then report unavailable instead of failing at startup.
func buildCompleter(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) ai.Completer {
	if !cfg.Enabled() {
		logger.Warn("ai credentials not configured, completions disabled",
			zap.String("provider", cfg.Provider))
		return nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		completer, err := ai.NewGeminiCompleter(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("failed to initialize gemini completer", zap.Error(err))
			return nil
		}
		logger.Info("gemini completer initialized")
		return completer
	case config.ProviderArk:
		completer, err := ai.NewArkCompleter(ctx, cfg)
		if err != nil {
			logger.Warn("failed to initialize ark completer", zap.Error(err))
			return nil
		}
		logger.Info("ark completer initialized", zap.String("model", cfg.ArkModel))
		return completer
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("kpchat listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
