package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/internal/extract"
	"github.com/docuvault/docuvault/internal/metadata"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/internal/pipeline"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/store/memory"
	"github.com/docuvault/docuvault/internal/store/postgres"
	"github.com/docuvault/docuvault/internal/summarizer"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
	"github.com/docuvault/docuvault/pkg/storage"
	"github.com/docuvault/docuvault/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log, err := logger.New(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
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
	// The worker shares the server's database; an in-memory store would
	// process documents into a void the API never sees.
	if cfg.Database.Driver == "memory" {
		log.Warn("Running the worker against the in-memory store; processed results are not shared with the server")
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

	classifier, err := nlp.NewZeroShotClassifier(nlp.ZeroShotConfig{
		Endpoint: cfg.NLP.ClassifierEndpoint,
		APIKey:   cfg.NLP.APIKey,
		Timeout:  cfg.NLP.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize classifier", logger.Error(err))
	}
	recognizer, err := nlp.NewEntityRecognizer(nlp.EntityRecognizerConfig{
		Endpoint: cfg.NLP.NEREndpoint,
		APIKey:   cfg.NLP.APIKey,
		Timeout:  cfg.NLP.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize entity recognizer", logger.Error(err))
	}
	embedder, err := nlp.NewOllamaEmbedder(nlp.EmbedderConfig{
		BaseURL:   cfg.NLP.OllamaBaseURL,
		Model:     cfg.NLP.EmbedModel,
		Dimension: cfg.NLP.EmbedDimension,
		Timeout:   cfg.NLP.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize embedder", logger.Error(err))
	}

	p := pipeline.New(pipeline.Params{
		Documents:        st,
		Embeddings:       st,
		Files:            files,
		Extractor:        extract.NewExtractor(log.Named("extract")),
		Metadata:         metadata.NewExtractor(recognizer, log.Named("metadata")),
		Summarizer:       summarizer.NewSummarizer(),
		Classifier:       classifier,
		Embedder:         embedder,
		SummarySentences: cfg.Pipeline.SummarySentences,
	}, log.Named("pipeline"))

	documentWorker, err := worker.NewDocumentWorker(&worker.Config{
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		Concurrency:   cfg.Pipeline.Concurrency,
	}, p, q, log.Named("worker"))
	if err != nil {
		log.Fatal("Failed to create document worker", logger.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := documentWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start worker", logger.Error(err))
	}
	log.Info("Worker started", logger.Int("concurrency", cfg.Pipeline.Concurrency))

	if cfg.Storage.Retention > 0 {
		go storage.RunRetentionSweep(ctx, files, cfg.Storage.Retention, time.Hour, log.Named("janitor"))
		log.Info("Retention sweep enabled", logger.Duration("retention", cfg.Storage.Retention))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	documentWorker.Stop()
	log.Info("Worker stopped")
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
