package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lolweather/lolweather/internal/forecast"
)

// CardWidth and CardHeight are the Open Graph image dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630
)

var (
	fontLarge   font.Face
	fontRegular font.Face
	fontSmall   font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse go bold: %w", err)
			return
		}
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse go regular: %w", err)
			return
		}

		faces := []struct {
			dst  *font.Face
			font *opentype.Font
			size float64
		}{
			{&fontLarge, bold, 120},
			{&fontRegular, regular, 36},
			{&fontSmall, regular, 28},
		}
		for _, f := range faces {
			*f.dst, err = opentype.NewFace(f.font, &opentype.FaceOptions{
				Size:    f.size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				fontErr = fmt.Errorf("create face %.0fpt: %w", f.size, err)
				return
			}
		}
	})
}

// CardCache caches rendered forecast cards per city for a short period.
type CardCache struct {
	mu      sync.RWMutex
	entries map[string]cardEntry
	ttl     time.Duration
}

type cardEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewCardCache(ttl time.Duration) *CardCache {
	return &CardCache{entries: make(map[string]cardEntry), ttl: ttl}
}

// Get returns the cached card if still valid.
func (c *CardCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (c *CardCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cardEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// RenderCard draws a forecast card. When banner is a decodable image it
// fills the background; otherwise the band gradient is used.
func RenderCard(banner []byte, wf forecast.WeekForecast) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	headline, band := cardHeadline(wf)
	palette := forecast.GetPalette(headline)
	if len(wf.Days) == 0 && wf.Current == nil {
		palette = forecast.DefaultPalette
	}

	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	drawn := false
	if len(banner) > 0 {
		if src, _, err := image.Decode(bytes.NewReader(banner)); err == nil {
			coverCrop(dst, src)
			drawBottomShade(dst)
			drawn = true
		}
	}
	if !drawn {
		drawGradient(dst, ParseHex(palette.GradientTop), ParseHex(palette.GradientBottom))
	}

	text := ParseHex(palette.Text)
	drawText(dst, wf.CityName, 60, 80, text, fontRegular)
	if len(wf.Days) > 0 || wf.Current != nil {
		drawText(dst, fmt.Sprintf("%.0f°", headline), 60, 220, text, fontLarge)
		theme := forecast.ThemeFor(band)
		drawText(dst, theme.Description, 60, 290, text, fontRegular)
	}

	colWidth := (CardWidth - 120) / forecast.MaxDays
	for i, d := range wf.Days {
		x := 60 + i*colWidth
		drawText(dst, d.DayName, x, CardHeight-150, text, fontSmall)
		drawText(dst, fmt.Sprintf("%.0f° / %.0f°", d.MaxTemp, d.MinTemp), x, CardHeight-105, text, fontSmall)
		drawText(dst, forecast.ThemeFor(d.ThemeBand).Label, x, CardHeight-60, text, fontSmall)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// cardHeadline picks the big temperature: current conditions when known,
// otherwise today's max.
func cardHeadline(wf forecast.WeekForecast) (float64, forecast.ThemeBand) {
	if wf.Current != nil {
		return wf.Current.Temperature, wf.Current.ThemeBand
	}
	if len(wf.Days) > 0 {
		return wf.Days[0].MaxTemp, wf.Days[0].ThemeBand
	}
	return 0, forecast.BandComfortable
}

// ParseHex parses "#RRGGBB". Invalid input yields opaque white.
func ParseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

func drawGradient(img *image.RGBA, top, bottom color.RGBA) {
	b := img.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		p := float64(y-b.Min.Y) / float64(h-1)
		c := color.RGBA{
			R: lerp(top.R, bottom.R, p),
			G: lerp(top.G, bottom.G, p),
			B: lerp(top.B, bottom.B, p),
			A: 255,
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, p float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*p + 0.5)
}

// coverCrop scales src to cover dst and centre-crops it (nearest neighbour).
func coverCrop(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()

	scale := float64(dw) / float64(srcW)
	if s := float64(dh) / float64(srcH); s > scale {
		scale = s
	}
	offsetX := (int(float64(srcW)*scale) - dw) / 2
	offsetY := (int(float64(srcH)*scale) - dh) / 2

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx := int(float64(x+offsetX) / scale)
			sy := int(float64(y+offsetY) / scale)
			if sx >= 0 && sx < srcW && sy >= 0 && sy < srcH {
				dst.Set(x, y, src.At(sb.Min.X+sx, sb.Min.Y+sy))
			}
		}
	}
}

// drawBottomShade darkens the lower part of the card for text readability.
func drawBottomShade(img *image.RGBA) {
	b := img.Bounds()
	shade := 300

	for y := b.Max.Y - shade; y < b.Max.Y; y++ {
		p := float64(y-(b.Max.Y-shade)) / float64(shade)
		alpha := p * p * 0.85
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			c.R = uint8(float64(c.R) * (1 - alpha))
			c.G = uint8(float64(c.G) * (1 - alpha))
			c.B = uint8(float64(c.B) * (1 - alpha))
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
