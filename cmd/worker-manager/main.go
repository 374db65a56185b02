// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"matchmaking-workers/internal/common/camunda"
	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/database"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/observability"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/pkg/vocabulary"

	// Catalog Workers (2)
	qt "matchmaking-workers/internal/workers/catalog/query-therapists"
	sth "matchmaking-workers/internal/workers/catalog/search-therapists"

	// Discovery Workers (2)
	fm "matchmaking-workers/internal/workers/discovery/find-matches"
	msf "matchmaking-workers/internal/workers/discovery/merge-search-filters"

	// Intake Workers (1)
	va "matchmaking-workers/internal/workers/intake/validate-assessment"

	// Notification Workers (1)
	smn "matchmaking-workers/internal/workers/notification/send-match-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load Vocabulary & Scoring Weights ---
	vocab := vocabulary.Default()
	if cfg.Vocabulary.Path != "" {
		vocab, err = vocabulary.LoadVocabulary(cfg.Vocabulary.Path)
		if err != nil {
			zapLog.Fatal("vocabulary load failed", zap.Error(err), zap.String("path", cfg.Vocabulary.Path))
		}
		zapLog.Info("Vocabulary loaded", zap.String("path", cfg.Vocabulary.Path))
	}

	weights := matching.DefaultWeights()
	if cfg.Matching.WeightsFile != "" {
		weights, err = matching.LoadWeightsFromFile(cfg.Matching.WeightsFile)
		if err != nil {
			zapLog.Fatal("weights load failed", zap.Error(err), zap.String("path", cfg.Matching.WeightsFile))
		}
		zapLog.Info("Scoring weights loaded", zap.String("path", cfg.Matching.WeightsFile))
	}

	engine := matching.NewEngine(weights)

	// --- START: Register ALL 6 Workers ---
	var workers []*camunda.Worker

	// --- 1. Intake Workers (1) ---
	if cfg.Workers[va.TaskType].Enabled {
		handler := va.NewHandler(
			&va.Config{
				CacheTTL: time.Duration(cfg.Matching.AssessmentCacheTTL) * time.Second,
				Timeout:  time.Duration(cfg.Workers[va.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, vocab, log,
		)
		workers = append(workers, startWorker(zeebeClient, va.TaskType, cfg.Workers[va.TaskType], handler.Handle, zapLog))
	}

	// --- 2. Discovery Workers (2) ---
	if cfg.Workers[fm.TaskType].Enabled {
		handler := fm.NewHandler(
			&fm.Config{
				CacheTTL:   time.Duration(cfg.Matching.AssessmentCacheTTL) * time.Second,
				Timeout:    time.Duration(cfg.Workers[fm.TaskType].Timeout) * time.Millisecond,
				MaxResults: cfg.Matching.MaxResults,
			},
			pg.DB, redis.Client, engine, log,
		)
		workers = append(workers, startWorker(zeebeClient, fm.TaskType, cfg.Workers[fm.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[msf.TaskType].Enabled {
		handler := msf.NewHandler(
			&msf.Config{
				Timeout: time.Duration(cfg.Workers[msf.TaskType].Timeout) * time.Millisecond,
			},
			vocab, log,
		)
		workers = append(workers, startWorker(zeebeClient, msf.TaskType, cfg.Workers[msf.TaskType], handler.Handle, zapLog))
	}

	// --- 3. Catalog Workers (2) ---
	if cfg.Workers[qt.TaskType].Enabled {
		handler := qt.NewHandler(
			&qt.Config{
				Timeout: time.Duration(cfg.Workers[qt.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		workers = append(workers, startWorker(zeebeClient, qt.TaskType, cfg.Workers[qt.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[sth.TaskType].Enabled {
		handler := sth.NewHandler(
			&sth.Config{
				Timeout:      time.Duration(cfg.Workers[sth.TaskType].Timeout) * time.Millisecond,
				DefaultIndex: cfg.Matching.TherapistIndex,
			},
			esClient.Client, log,
		)
		workers = append(workers, startWorker(zeebeClient, sth.TaskType, cfg.Workers[sth.TaskType], handler.Handle, zapLog))
	}

	// --- 4. Notification Workers (1) ---
	if cfg.Workers[smn.TaskType].Enabled {
		handler, err := smn.NewHandler(
			&smn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSSenderID:  cfg.Notifications.SMS.DefaultSMSSenderID,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[smn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-match-notification handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebeClient, smn.TaskType, cfg.Workers[smn.TaskType], handler.Handle, zapLog))
	}
	zapLog.Info("All 6 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "healthy"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			if w != nil {
				w.Close()
			}
		}
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		zapLog.Warn("Shutdown timeout exceeded, forcing exit")
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(client, taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, handlerFunc, log)
}
