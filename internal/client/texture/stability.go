package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

const (
	DefaultEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/sd3"

	aspectRatio  = "16:9"
	outputFormat = "jpeg"
	maxImageSize = 64 << 20
)

var ErrMissingAPIKey = errors.New("image generation API key is not configured")

// Image is a generated picture.
type Image struct {
	Data        []byte
	ContentType string
}

// Generator produces an image for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Image, error)
}

// StabilityClient calls the Stable Image generate endpoint.
type StabilityClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   logging.Logger
}

func NewStabilityClient(endpoint, apiKey string, timeout time.Duration, logger logging.Logger) *StabilityClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &StabilityClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With("component", "stability"),
	}
}

// Generate posts the prompt as multipart form data and returns the raw
// image bytes.
func (c *StabilityClient) Generate(ctx context.Context, p Prompt) (Image, error) {
	if c.apiKey == "" {
		return Image{}, ErrMissingAPIKey
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"prompt", p.Prompt},
		{"negative_prompt", p.NegativePrompt},
		{"aspect_ratio", aspectRatio},
		{"output_format", outputFormat},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return Image{}, fmt.Errorf("encode %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return Image{}, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return Image{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.apiKey)
	req.Header.Set("Accept", "image/*")

	c.logger.Debug(ctx, "requesting texture", "prompt_len", len(p.Prompt))
	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("image generation failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	ct := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if ct == "" {
		ct = "image/" + outputFormat
	}
	return Image{Data: data, ContentType: ct}, nil
}
