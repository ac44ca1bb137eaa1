package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lolweather/lolweather/internal/forecast"
)

// ErrNoImage is returned when the image API answers without usable data.
var ErrNoImage = errors.New("no image data returned")

// imagesAPI is the part of openai.ImageService the generator calls.
type imagesAPI interface {
	Generate(ctx context.Context, body openai.ImageGenerateParams, opts ...option.RequestOption) (*openai.ImagesResponse, error)
}

// Generator paints themed banners with OpenAI's image API.
type Generator struct {
	images  imagesAPI
	model   string
	quality openai.ImageGenerateParamsQuality
}

type GeneratorOption func(*Generator)

// WithQuality trades cost for detail. Banners default to low quality.
func WithQuality(q openai.ImageGenerateParamsQuality) GeneratorOption {
	return func(g *Generator) { g.quality = q }
}

func NewGenerator(apiKey string, opts ...GeneratorOption) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newGenerator(&client.Images, opts...), nil
}

func newGenerator(images imagesAPI, opts ...GeneratorOption) *Generator {
	g := &Generator{
		images:  images,
		model:   "gpt-image-1",
		quality: openai.ImageGenerateParamsQualityLow,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate paints the banner for a band, sky and time of day and returns
// PNG bytes. Responses that do not decode as PNG are rejected so they never
// reach the cache.
func (g *Generator) Generate(ctx context.Context, band forecast.ThemeBand, sky forecast.SkyCondition, tod forecast.TimeOfDay) ([]byte, error) {
	key := forecast.BannerKey(band, sky, tod)
	log.Printf("imagegen: generating banner %s", key)

	resp, err := g.images.Generate(ctx, openai.ImageGenerateParams{
		Model:        g.model,
		Prompt:       forecast.BuildPrompt(band, sky, tod),
		Size:         openai.ImageGenerateParamsSize1536x1024,
		Quality:      g.quality,
		OutputFormat: openai.ImageGenerateParamsOutputFormatPNG,
	})
	if err != nil {
		return nil, fmt.Errorf("generate banner %s: %w", key, err)
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("generate banner %s: %w", key, ErrNoImage)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode banner %s: %w", key, err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("banner %s is not a png: %w", key, err)
	}

	log.Printf("imagegen: generated banner %s (%d bytes)", key, len(data))
	return data, nil
}
