package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/service"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	corpusPath := flag.String("corpus", "", "tab-separated corpus file to index at startup")
	policyName := flag.String("policy", "sequential", "execution policy: sequential or parallel")
	statusName := flag.String("status", "ACTUAL", "document status to search")
	pageSize := flag.Int("page-size", 2, "results per printed page")
	dedup := flag.Bool("dedup", false, "remove duplicate documents after loading the corpus")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	policy, err := index.ParsePolicy(*policyName)
	if err != nil {
		slog.Error("invalid policy flag", "error", err)
		os.Exit(1)
	}
	status, err := index.ParseStatus(*statusName)
	if err != nil {
		slog.Error("invalid status flag", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	svc, err := service.New(cfg, m)
	if err != nil {
		slog.Error("failed to create search service", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		checker := health.NewChecker()
		checker.Register("index", func(context.Context) error {
			return svc.CheckConsistency()
		})
		checker.Register("request_window", func(context.Context) error {
			if svc.RequestWindowAllEmpty() {
				return fmt.Errorf("%w: all %d recent requests returned no results", health.ErrDegraded, cfg.RequestQueue.Capacity)
			}
			return nil
		})
		shutdown := metrics.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"/healthz": checker.LiveHandler(),
			"/readyz":  checker.ReadyHandler(),
		})
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *corpusPath != "" {
		if err := loadCorpus(ctx, svc, *corpusPath); err != nil {
			slog.Error("failed to load corpus", "path", *corpusPath, "error", err)
			os.Exit(1)
		}
	}
	if *dedup {
		removed, err := svc.RemoveDuplicates(ctx, policy)
		if err != nil {
			slog.Error("duplicate removal failed", "error", err)
			os.Exit(1)
		}
		slog.Info("duplicates removed", "count", removed)
	}

	if cfg.Kafka.Enabled {
		kafkaConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.DocumentTopic, consumer.HandleMessage(svc, policy, m))
		indexConsumer := consumer.New(kafkaConsumer)
		slog.Info("consuming document events",
			"topic", cfg.Kafka.DocumentTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		go func() {
			if err := indexConsumer.Start(ctx); err != nil {
				slog.Error("consumer error", "error", err)
			}
		}()
	}

	slog.Info("search server ready", "documents", svc.DocumentCount(), "policy", policy)

	queries := flag.Args()
	if len(queries) > 0 {
		for _, q := range queries {
			runQuery(ctx, os.Stdout, svc, q, status, policy, *pageSize)
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() && ctx.Err() == nil {
			q := strings.TrimSpace(scanner.Text())
			if q == "" {
				continue
			}
			runQuery(ctx, os.Stdout, svc, q, status, policy, *pageSize)
		}
		if err := scanner.Err(); err != nil {
			slog.Error("reading queries failed", "error", err)
		}
	}

	if cfg.Kafka.Enabled {
		slog.Info("queries done, waiting for shutdown signal")
		<-ctx.Done()
	}
	slog.Info("search server stopped", "no_result_requests", svc.NoResultRequests())
}

func loadCorpus(ctx context.Context, svc *service.Service, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	events, parseErr := ingestion.ParseCorpus(f)
	if parseErr != nil {
		slog.Warn("corpus contains malformed lines", "error", parseErr)
	}
	added := 0
	for _, ev := range events {
		if _, err := svc.AddDocument(ctx, ev.ID, ev.Text, ev.Status, ev.Ratings); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Warn("document rejected", "doc_id", ev.ID, "code", apperrors.Code(err), "error", err)
			continue
		}
		added++
	}
	slog.Info("corpus loaded", "path", path, "documents", added, "duplicates", len(svc.FindDuplicates()))
	return nil
}

func runQuery(ctx context.Context, w io.Writer, svc *service.Service, q string, status index.Status, policy index.Policy, pageSize int) {
	docs, err := svc.AddFindRequest(ctx, q, executor.WithStatus(status), executor.WithPolicy(policy))
	if err != nil {
		fmt.Fprintf(w, "query %q: error: %v\n", q, err)
		return
	}
	fmt.Fprintf(w, "query %q: %d result(s)\n", q, len(docs))
	for _, page := range paginator.Paginate(docs, pageSize) {
		fmt.Fprintf(w, "  page %d/%d\n", page.Number, page.Total)
		for _, d := range page.Items {
			printDocument(w, d)
		}
	}
}

func printDocument(w io.Writer, d ranker.Document) {
	fmt.Fprintf(w, "    { document_id = %d, relevance = %g, rating = %d }\n", d.ID, d.Relevance, d.Rating)
}
