package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	corpusPath := flag.String("corpus", "", "tab-separated corpus file to publish")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall publish deadline")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *corpusPath == "" {
		slog.Error("missing -corpus flag")
		os.Exit(2)
	}
	f, err := os.Open(*corpusPath)
	if err != nil {
		slog.Error("failed to open corpus", "error", err)
		os.Exit(1)
	}
	events, err := ingestion.ParseCorpus(f)
	f.Close()
	if err != nil {
		slog.Warn("corpus contains malformed lines", "error", err)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.DocumentTopic)
	defer producer.Close()
	pub := publisher.New(producer, resilience.RetryConfig{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("publishing corpus",
		"events", len(events),
		"topic", cfg.Kafka.DocumentTopic,
		"brokers", cfg.Kafka.Brokers,
	)
	var sent int
	err = resilience.WithTimeout(ctx, *timeout, "publish corpus", func(ctx context.Context) error {
		var perr error
		sent, perr = pub.PublishAll(ctx, events)
		return perr
	})
	if err != nil {
		slog.Error("publishing finished with errors", "sent", sent, "error", err)
		os.Exit(1)
	}
	slog.Info("corpus published", "sent", sent)
}
