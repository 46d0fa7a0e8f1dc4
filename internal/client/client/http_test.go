package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s staticTokens) Token() string { return s.token }

type recordingInvalidator struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recordingInvalidator) InvalidateToken(_ context.Context, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r chi.Router, token string) (*HTTPClient, *recordingInvalidator) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	inv := &recordingInvalidator{}
	c, err := NewHTTPClient(srv.URL+"/api/v1", 2*time.Second,
		WithHTTPClient(srv.Client()),
		WithTokenSource(staticTokens{token: token}),
		WithUnauthorizedHandler(inv),
		WithRetryBase(time.Millisecond),
	)
	require.NoError(t, err)
	return c, inv
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("127.0.0.1:8000", time.Second)
	require.Error(t, err)
	_, err = NewHTTPClient("ftp://host/api", time.Second)
	require.Error(t, err)
	_, err = NewHTTPClient("http://host/api", 0)
	require.Error(t, err)

	c, err := NewHTTPClient("http://host/api/v1/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://host/api/v1/auth/me", c.endpoint("/auth/me", nil))
}

func TestLogin_FormEncodedAndAnonymous(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, contentTypeForm, req.Header.Get("Content-Type"))
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "ada@example.com", req.PostForm.Get("username"))
		assert.Equal(t, "secret1", req.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok-1",
			"token_type":   "Bearer",
			"user":         map[string]any{"id": "u1", "username": "ada", "email": "ada@example.com"},
		})
	})
	c, _ := newTestClient(t, r, "stale")

	resp, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)
	assert.Equal(t, "ada", resp.User.Username)
}

func TestLogin_BadCredentialsDoNotInvalidate(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	})
	c, inv := newTestClient(t, r, "current")

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.Empty(t, inv.calls())
}

func TestLogin_MissingToken(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1"}})
	})
	c, _ := newTestClient(t, r, "")

	_, err := c.Login(context.Background(), "a@b.c", "secret1")
	require.ErrorIs(t, err, errNoAccessToken)
}

func TestSignup_JSONBody(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/signup", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, contentTypeJSON, req.Header.Get("Content-Type"))
		var in models.SignupRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		assert.Equal(t, models.SignupRequest{Username: "ada", Email: "ada@example.com", Password: "secret1"}, in)
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":      "User created successfully",
			"access_token": "tok-2",
			"user":         map[string]any{"id": "u1", "username": "ada"},
		})
	})
	c, _ := newTestClient(t, r, "")

	resp, err := c.Signup(context.Background(), models.SignupRequest{Username: "ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", resp.AccessToken)
	assert.Equal(t, "User created successfully", resp.Message)
}

func TestSignup_ConflictMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Username already taken"})
	})
	c, _ := newTestClient(t, r, "")

	_, err := c.Signup(context.Background(), models.SignupRequest{Username: "ada"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, err.Error(), "Username already taken")
}

func TestCurrentUser_UsesExplicitTokenWithoutRetryOrHook(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		if req.Header.Get("Authorization") != "Bearer persisted" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "username": "ada"})
	})
	c, inv := newTestClient(t, r, "other")

	u, err := c.CurrentUser(context.Background(), "persisted")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	_, err = c.CurrentUser(context.Background(), "revoked")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, inv.calls())
	assert.Equal(t, int32(2), hits.Load())
}

func TestCurrentUser_WrappedIdentity(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u9", "username": "grace"}})
	})
	c, _ := newTestClient(t, r, "")

	u, err := c.CurrentUser(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)
}

func TestCurrentUser_FallsBackToUsersMe(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/users/me", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer t", req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u3", "username": "lin"}})
	})
	c, _ := newTestClient(t, r, "")

	u, err := c.CurrentUser(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "lin", u.Username)
}

func TestCurrentUser_MalformedBody(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	c, _ := newTestClient(t, r, "")

	_, err := c.CurrentUser(context.Background(), "t")
	require.Error(t, err)
}

func TestAuthenticatedRequestCarriesBearerAndRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/kepler", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
		assert.Equal(t, "200", req.URL.Query().Get("limit"))
		assert.Equal(t, "CONFIRMED", req.URL.Query().Get("disposition"))
		assert.Equal(t, "2.5", req.URL.Query().Get("min_period"))
		assert.False(t, req.URL.Query().Has("page"))
		writeJSON(w, http.StatusOK, []map[string]any{{"_id": "k1", "koi_name": "K00001.01", "koi_period": 2.47}})
	})
	c, _ := newTestClient(t, r, "tok")

	l, raw, err := c.KeplerList(context.Background(), models.ListFilter{Limit: 200, Disposition: "CONFIRMED", MinPeriod: 2.5})
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "k1", l.Items[0].Key())
	assert.Contains(t, string(raw), "K00001.01")
}

func TestNoTokenNoHeader(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/tess", func(w http.ResponseWriter, req *http.Request) {
		_, present := req.Header["Authorization"]
		assert.False(t, present)
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"_id": "t1", "tic_id": 42}}, "pagination": map[string]any{"total_items": 1}})
	})
	c, _ := newTestClient(t, r, "")

	l, _, err := c.TessList(context.Background(), models.ListFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "42", l.Items[0].TIC())
	assert.Equal(t, 1, l.Pagination.TotalItems)
}

func TestUnauthorizedReportsTokenUsed(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/annotations", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token has expired"})
	})
	c, inv := newTestClient(t, r, "expired-tok")

	_, err := c.Annotations(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []string{"expired-tok"}, inv.calls())
}

func TestGetRetriedOnceOnGatewayErrors(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/search", func(w http.ResponseWriter, req *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "kepler-22", req.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, map[string]any{
			"query":       "kepler-22",
			"results":     map[string]any{"kepler": []map[string]any{{"_id": "k"}}, "tess": []any{}},
			"total_found": map[string]int{"kepler": 1, "tess": 0, "combined": 1},
		})
	})
	c, _ := newTestClient(t, r, "tok")

	resp, err := c.Search(context.Background(), "kepler-22")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalFound.Combined)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetGivesUpAfterOneRetry(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/stats", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c, _ := newTestClient(t, r, "tok")

	_, err := c.DatasetStats(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPostNotRetried(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/v1/predictions/predict", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c, _ := newTestClient(t, r, "tok")

	_, err := c.Predict(context.Background(), models.PredictionRequest{CustomIdentifier: "x"})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load())
}

func TestInternalErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/v1/predictions/stats", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	})
	c, _ := newTestClient(t, r, "tok")

	_, err := c.PredictionStats(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewHTTPClient(base, time.Second, WithRetryBase(time.Millisecond))
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContextIsNotUnavailable(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/kepler/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	c, _ := newTestClient(t, r, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.KeplerGet(ctx, "k1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDetailEndpoints(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/kepler/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":         map[string]any{"_id": chi.URLParam(req, "id"), "koi_prad": 1.2, "koi_teq": 300},
			"dataset_info": map[string]string{"type": "kepler"},
		})
	})
	r.Get("/api/v1/datasets/tess/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "TESS object not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"_id": chi.URLParam(req, "id"), "toi": 101.01})
	})
	c, _ := newTestClient(t, r, "tok")

	k, err := c.KeplerGet(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", k.Key())
	assert.Equal(t, 300.0, *k.EqTemp)

	tobj, err := c.TessGet(context.Background(), "t9")
	require.NoError(t, err)
	assert.Equal(t, "101.01", tobj.TOI.String())

	_, err = c.TessGet(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "TESS object not found")
}

func TestAnnotationsCRUD(t *testing.T) {
	store := map[string]models.Annotation{}
	r := chi.NewRouter()
	r.Route("/api/v1/annotations", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			out := make([]models.Annotation, 0, len(store))
			for _, a := range store {
				out = append(out, a)
			}
			writeJSON(w, http.StatusOK, out)
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var in models.AnnotationInput
			require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
			a := models.Annotation{ID: "n1", DatasetID: in.DatasetID, DatasetType: in.DatasetType, Notes: in.Notes, Tags: in.Tags}
			store[a.ID] = a
			writeJSON(w, http.StatusCreated, a)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			var in models.AnnotationInput
			require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
			a := store[chi.URLParam(req, "id")]
			a.Notes, a.Tags = in.Notes, in.Tags
			store[a.ID] = a
			writeJSON(w, http.StatusOK, map[string]any{"data": a})
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			delete(store, chi.URLParam(req, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	c, _ := newTestClient(t, r, "tok")
	ctx := context.Background()

	list, err := c.Annotations(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := c.CreateAnnotation(ctx, models.AnnotationInput{DatasetID: "k1", DatasetType: "kepler", Notes: "dip", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)

	updated, err := c.UpdateAnnotation(ctx, "n1", models.AnnotationInput{DatasetID: "k1", DatasetType: "kepler", Notes: "deeper dip", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "deeper dip", updated.Notes)

	require.NoError(t, c.DeleteAnnotation(ctx, "n1"))
	list, err = c.Annotations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPredictAndHistory(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/predictions/predict", func(w http.ResponseWriter, req *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		assert.Equal(t, "cand-1", in["customIdentifier"])
		assert.Equal(t, 0.0, in["koi_impact"])
		writeJSON(w, http.StatusOK, map[string]any{
			"message":       "Prediction completed successfully",
			"prediction":    map[string]any{"candidateIdentifier": "cand-1", "confidence": 0.87, "isExoplanet": true, "details": map[string]any{"planetType": "Super-Earth"}},
			"prediction_id": "p1",
		})
	})
	r.Get("/api/v1/predictions/history", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "2", req.URL.Query().Get("page"))
		assert.Equal(t, "5", req.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"predictions": []map[string]any{{"id": "p1", "user_id": "u1", "created_at": "2025-10-05T10:00:00"}},
			"pagination":  map[string]int{"page": 2, "limit": 5, "total": 6, "pages": 2},
		})
	})
	r.Get("/api/v1/predictions/history/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": chi.URLParam(req, "id")})
	})
	c, _ := newTestClient(t, r, "tok")
	ctx := context.Background()

	resp, err := c.Predict(ctx, models.PredictionRequest{CustomIdentifier: "cand-1", Period: 3})
	require.NoError(t, err)
	assert.True(t, resp.Prediction.IsExoplanet)
	assert.Equal(t, "p1", resp.PredictionID)

	h, err := c.PredictionHistory(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, h.Predictions, 1)
	assert.Equal(t, 2, h.Pagination.Pages)

	rec, err := c.PredictionGet(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ID)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Invalid email or password"}`, "Invalid email or password"},
		{"detail string", `{"detail":"Not authenticated"}`, "Not authenticated"},
		{"detail list", `{"detail":[{"msg":"field required"},{"msg":"bad email"}]}`, "field required; bad email"},
		{"plain text", "Service Unavailable\n", "Service Unavailable"},
		{"empty object", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestAPIError(t *testing.T) {
	e := newAPIError(http.StatusTeapot, "", false)
	assert.Equal(t, "api error 418: I'm a teapot", e.Error())
	assert.Nil(t, e.Unwrap())

	assert.ErrorIs(t, newAPIError(http.StatusNotFound, "x", false), ErrNotFound)
	assert.ErrorIs(t, newAPIError(http.StatusUnauthorized, "x", true), ErrInvalidCredentials)
	assert.ErrorIs(t, newAPIError(http.StatusUnauthorized, "x", false), ErrUnauthorized)
}
