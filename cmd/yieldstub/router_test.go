package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgrid/internal/httputil"
	"farmgrid/internal/logging"
	"farmgrid/internal/yield"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Discard()
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	SetupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPredictRoundTrip(t *testing.T) {
	srv := httptest.NewServer(SetupRouter())
	defer srv.Close()

	p := &yield.HTTPPredictor{Client: httputil.NewStandardClient(srv.Client(), 0), Endpoint: srv.URL + "/predict_yield"}
	ranked, err := p.Predict(context.Background(), yield.Request{Humidity: 55, Temperature: 18, Nutrient: yield.Protein})
	require.NoError(t, err)
	require.Len(t, ranked, len(crops))
	assert.Equal(t, Rank(18, 55, yield.Protein), ranked)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Value, ranked[i].Value)
	}
}

func TestPredictRejectsBadInput(t *testing.T) {
	r := SetupRouter()
	for _, body := range []string{`{`, `{"humidity": 1, "temperature": 2, "nutrient": "Fibre"}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/predict_yield", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestRankFavoursOptimalConditions(t *testing.T) {
	assert.Equal(t, "Rapeseed", Rank(15, 60, yield.Oil)[0].Crop)
	assert.Equal(t, "Maize", Rank(25, 65, yield.Calories)[0].Crop)
	assert.Equal(t, Rank(20, 50, yield.EFA), Rank(20, 50, yield.EFA))
}
