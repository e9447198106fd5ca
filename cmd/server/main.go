package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/genepredict/internal/catalog"
	"github.com/Skufu/genepredict/internal/classifier"
	"github.com/Skufu/genepredict/internal/inference"
	"github.com/Skufu/genepredict/internal/schema"
	"github.com/Skufu/genepredict/internal/store"
)

type Config struct {
	Port        string
	ModelPath   string
	DatabaseURL string
	EnableDB    bool
	LogLevel    logrus.Level
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	labels := schema.DefaultLabels()
	engine, err := loadEngine(cfg.ModelPath, labels)
	if err != nil {
		logrus.Fatalf("model load failed: %v", err)
	}

	deps := Deps{
		Engine:  engine,
		Catalog: catalog.New(labels),
	}

	ctx := context.Background()
	if cfg.EnableDB {
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		deps.DB = db
		deps.Recorder = db
	}

	router := setupRouter(deps)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"model": cfg.ModelPath,
		"db":    cfg.EnableDB,
	}).Info("server listening")
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		ModelPath:   getEnv("MODEL_PATH", "model.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		LogLevel:    level,
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

// loadEngine reads the trained artifact once. The model is read-only from
// here on and shared by every request.
func loadEngine(path string, labels *schema.LabelTable) (*inference.Engine, error) {
	artifact, err := classifier.LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	norm, err := inference.ParseNormalization(artifact.Normalization)
	if err != nil {
		return nil, err
	}
	model, err := artifact.Model(schema.FeatureColumns())
	if err != nil {
		return nil, err
	}
	if model.Classes != labels.Len() {
		return nil, fmt.Errorf("model has %d classes, label table has %d", model.Classes, labels.Len())
	}
	return inference.NewEngine(model, labels, inference.WithNormalization(norm)), nil
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
