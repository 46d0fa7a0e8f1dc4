package services

import (
	"context"
	"math"
	"testing"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPrediction() models.PredictionRequest {
	return models.PredictionRequest{
		CustomIdentifier: "cand-1",
		Period:           10, Time0BK: 100, Impact: 0, Duration: 5, Depth: 1000,
		Radius: 1, EqTemp: 300, Insolation: 1, ModelSNR: 10,
		StellarTemp: 5000, StellarLogG: 4, StellarRadius: 1,
		RA: 291.9, Dec: -48.1, KepMag: 15,
	}
}

func TestValidatePrediction(t *testing.T) {
	require.NoError(t, ValidatePrediction(validPrediction()))

	tests := []struct {
		name  string
		edit  func(*models.PredictionRequest)
		field string
	}{
		{"missing identifier", func(r *models.PredictionRequest) { r.CustomIdentifier = " " }, "customIdentifier"},
		{"zero period", func(r *models.PredictionRequest) { r.Period = 0 }, "koi_period"},
		{"negative impact", func(r *models.PredictionRequest) { r.Impact = -0.1 }, "koi_impact"},
		{"nan depth", func(r *models.PredictionRequest) { r.Depth = math.NaN() }, "koi_depth"},
		{"ra out of range", func(r *models.PredictionRequest) { r.RA = 360 }, "ra"},
		{"dec out of range", func(r *models.PredictionRequest) { r.Dec = -91 }, "dec"},
		{"infinite magnitude", func(r *models.PredictionRequest) { r.KepMag = math.Inf(1) }, "koi_kepmag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validPrediction()
			tt.edit(&r)
			var ve *ValidationError
			require.ErrorAs(t, ValidatePrediction(r), &ve)
			assert.Len(t, ve.Fields, 1)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestPredict_ValidatesBeforeNetwork(t *testing.T) {
	fc := &fakeClient{}
	svc := NewPredictionService(fc, logging.Nop())
	r := validPrediction()
	r.Radius = -1

	_, err := svc.Predict(context.Background(), r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, fc.Calls())
}

func TestPredict_Success(t *testing.T) {
	fc := &fakeClient{PredictRet: &models.PredictResponse{
		PredictionID: "p1",
		Prediction:   models.PredictionResult{CandidateIdentifier: "cand-1", Confidence: 0.91, IsExoplanet: true},
	}}
	svc := NewPredictionService(fc, logging.Nop())
	r := validPrediction()
	r.CustomIdentifier = "  cand-1 "

	resp, err := svc.Predict(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, resp.Prediction.IsExoplanet)
	assert.Equal(t, "cand-1", fc.LastPredict.CustomIdentifier)
}

func TestHistory_ClampsPaging(t *testing.T) {
	fc := &fakeClient{HistoryRet: &models.PredictionHistory{}}
	svc := NewPredictionService(fc, logging.Nop())
	ctx := context.Background()

	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultHistoryLimit},
		{3, 500, 3, MaxHistoryLimit},
		{2, 7, 2, 7},
	}
	for _, tt := range tests {
		_, err := svc.History(ctx, tt.page, tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, fc.LastPage)
		assert.Equal(t, tt.wantLimit, fc.LastLimit)
	}
}

func TestPredictionGet_RequiresID(t *testing.T) {
	fc := &fakeClient{PredictionRet: &models.PredictionRecord{ID: "p1"}}
	svc := NewPredictionService(fc, logging.Nop())

	_, err := svc.Get(context.Background(), "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	rec, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ID)
}
