package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/api/handlers"
	"github.com/docuvault/docuvault/api/routes"
	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/internal/chat"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/internal/search"
	"github.com/docuvault/docuvault/internal/service/document"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/store/memory"
	"github.com/docuvault/docuvault/internal/store/postgres"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
	"github.com/docuvault/docuvault/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log, err := logger.New(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/server.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config", logger.Error(err))
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Error("Invalid config", logger.String("field", p.Field), logger.String("problem", p.Message))
		}
		os.Exit(1)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("Failed to open store", logger.Error(err))
	}
	defer closeStore()

	files, err := storage.New(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}

	q, err := queue.New(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to queue", logger.Error(err))
	}
	defer q.Close()

	embedder, err := nlp.NewOllamaEmbedder(nlp.EmbedderConfig{
		BaseURL:   cfg.NLP.OllamaBaseURL,
		Model:     cfg.NLP.EmbedModel,
		Dimension: cfg.NLP.EmbedDimension,
		Timeout:   cfg.NLP.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize embedder", logger.Error(err))
	}

	answerer, err := chat.NewOllamaAnswerer(cfg.NLP.OllamaBaseURL, cfg.NLP.ChatModel)
	if err != nil {
		log.Fatal("Failed to initialize chat model", logger.Error(err))
	}

	docService := document.NewService(st, files, q, document.Config{
		MaxFileSize: cfg.Server.MaxUploadSizeMB * 1024 * 1024,
	}, log)
	searchEngine := search.NewEngine(st, embedder, log.Named("search"))
	chatService := chat.NewService(st, st, embedder, answerer, log.Named("chat"))

	h := handlers.NewHandlers(docService, searchEngine, chatService, cfg.Search.TopK, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		st, err := postgres.NewStore(context.Background(), cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}
