package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/genepredict/internal/catalog"
	"github.com/Skufu/genepredict/internal/inference"
	"github.com/Skufu/genepredict/internal/schema"
	"github.com/Skufu/genepredict/internal/store"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Recorder persists predictions and contact messages.
type Recorder interface {
	RecordPrediction(ctx context.Context, rec store.PredictionRecord) error
	SaveContact(ctx context.Context, msg store.ContactMessage) error
}

// Deps are the collaborators the router serves. DB and Recorder are nil
// when persistence is disabled.
type Deps struct {
	Engine   *inference.Engine
	Catalog  *catalog.Catalog
	DB       HealthChecker
	Recorder Recorder
}

type PredictionResponse struct {
	ID            string    `json:"id"`
	Disease       int       `json:"disease"`
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"`
	Constraint    string    `json:"constraint,omitempty"`
}

func setupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if deps.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	api := router.Group("/api")
	api.POST("/predict", predictHandler(deps))
	api.GET("/diseases", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Catalog.List())
	})
	api.GET("/diseases/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		}
		d, ok := deps.Catalog.Get(schema.Disease(id))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		}
		c.JSON(http.StatusOK, d)
	})
	api.POST("/contact", contactHandler(deps))

	return router
}

func predictHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := readInput(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		pred, err := deps.Engine.Predict(in)
		if err != nil {
			var inErr *inference.InputError
			if errors.As(err, &inErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": inErr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
			return
		}

		id := uuid.New()
		if deps.Recorder != nil {
			rec := store.PredictionRecord{
				ID:         id,
				CreatedAt:  time.Now().UTC(),
				Features:   pred.Features.Slice(),
				Disease:    int(pred.Disease),
				Label:      pred.Label,
				Confidence: pred.Confidence,
				Constraint: pred.Constraint,
			}
			if err := deps.Recorder.RecordPrediction(c.Request.Context(), rec); err != nil {
				logrus.WithError(err).WithField("id", id).Warn("prediction audit failed")
			}
		}

		c.JSON(http.StatusOK, PredictionResponse{
			ID:            id.String(),
			Disease:       int(pred.Disease),
			Label:         pred.Label,
			Confidence:    pred.Confidence,
			Probabilities: pred.Probabilities,
			Constraint:    pred.Constraint,
		})
	}
}

func contactHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg store.ContactMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if deps.Recorder == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "stored": false})
			return
		}
		if err := deps.Recorder.SaveContact(c.Request.Context(), msg); err != nil {
			logrus.WithError(err).Error("save contact message")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored": true})
	}
}

const maxMultipartMemory = 1 << 20

// readInput collects the schema fields from a JSON object or a form post.
// Unknown keys are ignored and JSON nulls count as absent.
func readInput(c *gin.Context) (inference.Input, error) {
	in := inference.Input{}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		for _, f := range schema.Features() {
			v, ok := body[f.Key()]
			if !ok || v == nil {
				continue
			}
			switch val := v.(type) {
			case string:
				in[f.Key()] = val
			case float64:
				in[f.Key()] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				in[f.Key()] = fmt.Sprint(val)
			}
		}
		return in, nil
	}

	if c.ContentType() == "multipart/form-data" {
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for _, f := range schema.Features() {
		if vals, ok := c.Request.PostForm[f.Key()]; ok && len(vals) > 0 {
			in[f.Key()] = vals[0]
		}
	}
	return in, nil
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
