package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/genepredict/internal/catalog"
	"github.com/Skufu/genepredict/internal/classifier"
	"github.com/Skufu/genepredict/internal/inference"
	"github.com/Skufu/genepredict/internal/schema"
	"github.com/Skufu/genepredict/internal/store"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type fakeRecorder struct {
	predictions []store.PredictionRecord
	contacts    []store.ContactMessage
	err         error
}

func (f *fakeRecorder) RecordPrediction(ctx context.Context, rec store.PredictionRecord) error {
	f.predictions = append(f.predictions, rec)
	return f.err
}

func (f *fakeRecorder) SaveContact(ctx context.Context, msg store.ContactMessage) error {
	f.contacts = append(f.contacts, msg)
	return f.err
}

// fixedClassifier always favours breast cancer, with hemophilia second.
type fixedClassifier struct{}

func (fixedClassifier) Predict(X [][]float64) ([]int, error) {
	return []int{int(schema.BreastCancer)}, nil
}

func (fixedClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	return [][]float64{{0.1, 0.2, 0.5, 0.15, 0.05}}, nil
}

func testDeps() Deps {
	labels := schema.DefaultLabels()
	return Deps{
		Engine:  inference.NewEngine(fixedClassifier{}, labels),
		Catalog: catalog.New(labels),
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) PredictionResponse {
	t.Helper()
	var resp PredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigUsesDefaults(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("PORT", "")
	t.Setenv("MODEL_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "model.json", cfg.ModelPath)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	_, err := loadConfig()
	assert.Error(t, err)
}

func TestRouterHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(testDeps())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDeps()
	deps.DB = fakeDB{err: errors.New("connection refused")}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/readyz", nil)
	setupRouter(deps).ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	deps.DB = fakeDB{}
	w = httptest.NewRecorder()
	setupRouter(deps).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	setupRouter(testDeps()).ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "disabled")
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestPredictFormMaleSuppressed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := testDeps()
	rec := &fakeRecorder{}
	deps.Recorder = rec
	router := setupRouter(deps)

	form := url.Values{"gender": {"1"}, "age": {"45"}, "brca1_expression": {"0.9"}}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Hemophilia", resp.Label)
	assert.Equal(t, 0.2, resp.Confidence)
	assert.NotEmpty(t, resp.Constraint)
	assert.NotEmpty(t, resp.ID)

	require.Len(t, rec.predictions, 1)
	assert.Equal(t, resp.ID, rec.predictions[0].ID.String())
	assert.Equal(t, 0.45, rec.predictions[0].Features[schema.Age])
}

func TestPredictJSONFemale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(testDeps())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", strings.NewReader(`{"gender": 0, "age": "52", "p53_mutation": 1, "note": null}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, int(schema.BreastCancer), resp.Disease)
	assert.Equal(t, "Breast Cancer", resp.Label)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Empty(t, resp.Constraint)
}

func TestPredictMalformedInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := testDeps()
	rec := &fakeRecorder{}
	deps.Recorder = rec
	router := setupRouter(deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", strings.NewReader("age=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "could not be interpreted as numeric")
	assert.NotContains(t, w.Body.String(), "confidence")
	assert.Empty(t, rec.predictions)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/predict", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType := multipartBody(t, map[string]string{"age": "abc", "gender": "0"})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "could not be interpreted as numeric")
	assert.Empty(t, rec.predictions)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/predict", strings.NewReader("age=NaN"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictMultipartForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(testDeps())

	body, contentType := multipartBody(t, map[string]string{"gender": "0", "age": "52"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Breast Cancer", resp.Label)
	assert.Empty(t, resp.Constraint)
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPredictAuditFailureStillAnswers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := testDeps()
	deps.Recorder = &fakeRecorder{err: errors.New("db down")}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", strings.NewReader("gender=0"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setupRouter(deps).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDiseaseRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(testDeps())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/diseases", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list []catalog.Disease
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, schema.NumDiseases)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/diseases/4", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CFTR")

	for _, id := range []string{"9", "x"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/diseases/"+id, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestContact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := testDeps()
	rec := &fakeRecorder{}
	deps.Recorder = rec
	router := setupRouter(deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/contact", strings.NewReader(`{"name":"Ana","email":"ana@example.com","message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.contacts, 1)
	assert.Equal(t, "Ana", rec.contacts[0].Name)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/contact", strings.NewReader(`{"name":"Ana","email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadEngine(t *testing.T) {
	labels := schema.DefaultLabels()
	var X [][]float64
	var y []int
	for c := 0; c < schema.NumDiseases; c++ {
		var v schema.Vector
		v[schema.Age] = float64(c) / 10
		X = append(X, v.Slice())
		y = append(y, c)
	}
	m := classifier.NewKNN(1, schema.NumDiseases)
	require.NoError(t, m.Fit(X, y))
	a, err := classifier.NewArtifact(m, schema.FeatureColumns(), string(inference.NormalizeClamp))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, a.Save(path))

	engine, err := loadEngine(path, labels)
	require.NoError(t, err)
	p, err := engine.Predict(inference.Input{"age": "30", "gender": "0"})
	require.NoError(t, err)
	assert.Equal(t, schema.SickleCellAnemia, p.Disease)

	_, err = loadEngine(filepath.Join(t.TempDir(), "missing.json"), labels)
	assert.Error(t, err)
}
