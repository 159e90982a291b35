package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"blog_backend/internal/config"
	"blog_backend/internal/db"
	"blog_backend/internal/observability"
	"blog_backend/internal/queue"
	"blog_backend/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	workerCount = 3
	metricsAddr = ":8088"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if cfg.RabbitMQ.URL == "" {
		logrus.Fatal("RABBITMQ_URL is required for the worker")
	}

	gdb, err := db.Init(&cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	if err := db.Migrate(gdb, &worker.PostActivity{}); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(reg)
	logrus.Info("Metrics initialized")

	// Start metrics HTTP server for Prometheus scraping
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		logrus.Infof("Worker metrics server started on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logrus.WithError(err).Fatal("Failed to start metrics server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := worker.New(id, gdb, cfg.RabbitMQ.Queue, metrics)
			if err := w.Run(ctx, conn); err != nil {
				logrus.WithError(err).Errorf("Worker %d exited", id)
				stop()
			}
		}(i)
	}

	wg.Wait()
	logrus.Info("Workers stopped")
}
