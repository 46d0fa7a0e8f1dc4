package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

var errNoAccessToken = errors.New("auth response has no access token")

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/test", anonymous: true}, nil)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	form := url.Values{"username": {email}, "password": {password}}
	var resp models.AuthResponse
	_, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        []byte(form.Encode()),
		contentType: contentTypeForm,
		anonymous:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errNoAccessToken
	}
	return &resp, nil
}

func (c *HTTPClient) Signup(ctx context.Context, in models.SignupRequest) (*models.AuthResponse, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var resp models.AuthResponse
	if _, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/signup",
		body:        body,
		contentType: contentTypeJSON,
		anonymous:   true,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errNoAccessToken
	}
	return &resp, nil
}

// CurrentUser asks /auth/me and, when a server does not know that route,
// the equivalent /auth/users/me.
func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", explicit: true, token: token}, nil)
	if errors.Is(err, ErrNotFound) {
		body, err = c.do(ctx, request{method: http.MethodGet, path: "/auth/users/me", explicit: true, token: token}, nil)
	}
	if err != nil {
		return nil, err
	}

	// Accept both a bare identity and {"user": {...}}.
	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}
	var u models.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) KeplerList(ctx context.Context, f models.ListFilter) (*models.Listing[models.KeplerPlanet], []byte, error) {
	var l models.Listing[models.KeplerPlanet]
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/kepler", query: filterQuery(f)}, &l)
	if err != nil {
		return nil, nil, err
	}
	return &l, raw, nil
}

func (c *HTTPClient) KeplerGet(ctx context.Context, id string) (*models.KeplerPlanet, error) {
	var d models.Detail[models.KeplerPlanet]
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/kepler/" + url.PathEscape(id)}, &d); err != nil {
		return nil, err
	}
	return &d.Item, nil
}

func (c *HTTPClient) TessList(ctx context.Context, f models.ListFilter) (*models.Listing[models.TessObject], []byte, error) {
	var l models.Listing[models.TessObject]
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/tess", query: filterQuery(f)}, &l)
	if err != nil {
		return nil, nil, err
	}
	return &l, raw, nil
}

func (c *HTTPClient) TessGet(ctx context.Context, id string) (*models.TessObject, error) {
	var d models.Detail[models.TessObject]
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/tess/" + url.PathEscape(id)}, &d); err != nil {
		return nil, err
	}
	return &d.Item, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	q := url.Values{"query": {query}}
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/search", query: q}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DatasetStats(ctx context.Context) (*models.DatasetStats, error) {
	var resp models.DatasetStats
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/datasets/stats"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Annotations(ctx context.Context) ([]models.Annotation, error) {
	var l models.Listing[models.Annotation]
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/annotations"}, &l); err != nil {
		return nil, err
	}
	if l.Items == nil {
		l.Items = []models.Annotation{}
	}
	return l.Items, nil
}

func (c *HTTPClient) CreateAnnotation(ctx context.Context, in models.AnnotationInput) (*models.Annotation, error) {
	return c.writeAnnotation(ctx, http.MethodPost, "/annotations", in)
}

func (c *HTTPClient) UpdateAnnotation(ctx context.Context, id string, in models.AnnotationInput) (*models.Annotation, error) {
	return c.writeAnnotation(ctx, http.MethodPut, "/annotations/"+url.PathEscape(id), in)
}

func (c *HTTPClient) writeAnnotation(ctx context.Context, method, path string, in models.AnnotationInput) (*models.Annotation, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var d models.Detail[models.Annotation]
	if _, err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentTypeJSON}, &d); err != nil {
		return nil, err
	}
	return &d.Item, nil
}

func (c *HTTPClient) DeleteAnnotation(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/annotations/" + url.PathEscape(id)}, nil)
	return err
}

func (c *HTTPClient) Predict(ctx context.Context, in models.PredictionRequest) (*models.PredictResponse, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var resp models.PredictResponse
	if _, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/predictions/predict",
		body:        body,
		contentType: contentTypeJSON,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PredictionHistory(ctx context.Context, page, limit int) (*models.PredictionHistory, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp models.PredictionHistory
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/predictions/history", query: q}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PredictionGet(ctx context.Context, id string) (*models.PredictionRecord, error) {
	var resp models.PredictionRecord
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/predictions/history/" + url.PathEscape(id)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PredictionStats(ctx context.Context) (*models.PredictionStats, error) {
	var resp models.PredictionStats
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/predictions/stats"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
