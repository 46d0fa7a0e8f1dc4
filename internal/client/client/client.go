package client

import (
	"context"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

// Client is the research API.
type Client interface {
	Ping(ctx context.Context) error

	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	// CurrentUser validates token explicitly; it does not use the
	// TokenSource and a 401 does not reach the UnauthorizedHandler.
	CurrentUser(ctx context.Context, token string) (*models.User, error)

	KeplerList(ctx context.Context, f models.ListFilter) (*models.Listing[models.KeplerPlanet], []byte, error)
	KeplerGet(ctx context.Context, id string) (*models.KeplerPlanet, error)
	TessList(ctx context.Context, f models.ListFilter) (*models.Listing[models.TessObject], []byte, error)
	TessGet(ctx context.Context, id string) (*models.TessObject, error)
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
	DatasetStats(ctx context.Context) (*models.DatasetStats, error)

	Annotations(ctx context.Context) ([]models.Annotation, error)
	CreateAnnotation(ctx context.Context, in models.AnnotationInput) (*models.Annotation, error)
	UpdateAnnotation(ctx context.Context, id string, in models.AnnotationInput) (*models.Annotation, error)
	DeleteAnnotation(ctx context.Context, id string) error

	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictResponse, error)
	PredictionHistory(ctx context.Context, page, limit int) (*models.PredictionHistory, error)
	PredictionGet(ctx context.Context, id string) (*models.PredictionRecord, error)
	PredictionStats(ctx context.Context) (*models.PredictionStats, error)
}

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is told about every 401 together with the token the
// failed request carried.
type UnauthorizedHandler interface {
	InvalidateToken(ctx context.Context, token string)
}
