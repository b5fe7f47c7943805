package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"measure-reading-backend/config"
	"measure-reading-backend/internal/api"
	"measure-reading-backend/internal/db"
	"measure-reading-backend/internal/extract"
	"measure-reading-backend/internal/measure"
	"measure-reading-backend/internal/model"
	"measure-reading-backend/internal/store"
)

type listResponse struct {
	CustomerCode string `json:"customer_code"`
	Measures     []struct {
		MeasureUUID     string    `json:"measure_uuid"`
		MeasureDatetime time.Time `json:"measure_datetime"`
		MeasureType     string    `json:"measure_type"`
		HasConfirmed    bool      `json:"has_confirmed"`
		ImageURL        string    `json:"image_url"`
	} `json:"measures"`
}

func request(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// TestMeasureLifecycle drives a reading from upload through confirmation
// against a mock reading service and an in-memory database, with response
// caching enabled.
func TestMeasureLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(testDB))

	// 2. Mock reading service speaking the generateContent wire format.
	var extractCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		extractCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"135"}]}}]}`))
	}))
	defer server.Close()

	extractor, err := extract.NewGeminiExtractor(context.Background(), config.ExtractionConfig{
		APIKey:   "test-key",
		Model:    "gemini-1.5-flash",
		Endpoint: server.URL + "/",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	// 3. Wire the service and router the way main does.
	gormStore := store.NewGormStore(testDB)
	router := api.NewRouter(measure.NewService(gormStore, extractor), gormStore, time.Minute)

	var measureUUID string

	t.Run("Upload", func(t *testing.T) {
		w := request(t, router, http.MethodPost, "/upload", `{
			"customer_code": "C-1",
			"measure_type": "WATER",
			"measure_datetime": "2024-05-10T12:00:00Z",
			"image": "aGVsbG8="
		}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res measure.CreateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 135, res.MeasureValue)
		assert.Equal(t, 1, extractCalls)
		measureUUID = res.MeasureUUID

		var stored model.Measure
		require.NoError(t, testDB.Where("id = ?", measureUUID).First(&stored).Error)
		assert.Equal(t, 135, stored.MeasureValue)
		assert.Equal(t, "2024-05", stored.BillingMonth)
	})

	t.Run("List shows the unconfirmed reading", func(t *testing.T) {
		w := request(t, router, http.MethodGet, "/C-1/list", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "C-1", res.CustomerCode)
		require.Len(t, res.Measures, 1)
		assert.Equal(t, measureUUID, res.Measures[0].MeasureUUID)
		assert.Equal(t, "WATER", res.Measures[0].MeasureType)
		assert.False(t, res.Measures[0].HasConfirmed)
		assert.True(t, time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC).Equal(res.Measures[0].MeasureDatetime))

		assert.NotContains(t, w.Body.String(), "measure_value")
	})

	t.Run("Second upload in the same month is rejected", func(t *testing.T) {
		w := request(t, router, http.MethodPost, "/upload", `{
			"customer_code": "C-1",
			"measure_type": "water",
			"measure_datetime": "2024-05-28T08:00:00Z",
			"image": "aGVsbG8="
		}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "DOUBLE_REPORT")
		assert.Equal(t, 1, extractCalls)
	})

	t.Run("Confirm", func(t *testing.T) {
		w := request(t, router, http.MethodPatch, "/confirm",
			`{"measure_uuid": "`+measureUUID+`", "confirmed_value": 140}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())

		var stored model.Measure
		require.NoError(t, testDB.Where("id = ?", measureUUID).First(&stored).Error)
		assert.True(t, stored.HasConfirmed)
		assert.Equal(t, 140, stored.MeasureValue)
	})

	t.Run("List reflects the confirmation despite caching", func(t *testing.T) {
		w := request(t, router, http.MethodGet, "/C-1/list", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Measures, 1)
		assert.True(t, res.Measures[0].HasConfirmed)
	})

	t.Run("Second confirmation is rejected", func(t *testing.T) {
		w := request(t, router, http.MethodPatch, "/confirm",
			`{"measure_uuid": "`+measureUUID+`", "confirmed_value": 150}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error_code":"CONFIRMATION_DUPLICATE","error_description":"Measure already confirmed"}`, w.Body.String())
	})

	t.Run("Upload of another type and filtered listing", func(t *testing.T) {
		w := request(t, router, http.MethodPost, "/upload", `{
			"customer_code": "C-1",
			"measure_type": "GAS",
			"measure_datetime": "2024-05-11T09:00:00Z",
			"image": "aGVsbG8="
		}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = request(t, router, http.MethodGet, "/C-1/list", "")
		var all listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
		assert.Len(t, all.Measures, 2)

		w = request(t, router, http.MethodGet, "/C-1/list?measure_type=gas", "")
		var gas listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gas))
		require.Len(t, gas.Measures, 1)
		assert.Equal(t, "GAS", gas.Measures[0].MeasureType)
	})
}
