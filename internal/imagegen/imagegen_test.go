package imagegen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lolweather/lolweather/internal/forecast"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#FF5722", color.RGBA{0xFF, 0x57, 0x22, 0xFF}},
		{"0d47a1", color.RGBA{0x0D, 0x47, 0xA1, 0xFF}},
		{"#FFF", color.RGBA{255, 255, 255, 255}},
		{"nope", color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := ParseHex(tt.in); got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func decodeCard(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if b := img.Bounds(); b.Dx() != CardWidth || b.Dy() != CardHeight {
		t.Fatalf("card size = %dx%d, want %dx%d", b.Dx(), b.Dy(), CardWidth, CardHeight)
	}
	return img
}

func TestRenderCardUsesBandGradient(t *testing.T) {
	wf := forecast.WeekForecast{
		CityName: "Sevilla",
		Days: []forecast.DaySummary{
			{DayName: "Today", MaxTemp: 38, MinTemp: 22, ThemeBand: forecast.BandScorching},
			{DayName: "Tomorrow", MaxTemp: 33, MinTemp: 20, ThemeBand: forecast.BandHot},
		},
	}
	data, err := RenderCard(nil, wf)
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	img := decodeCard(t, data)

	want := ParseHex(forecast.GetPalette(38).GradientTop)
	r, g, b, _ := img.At(CardWidth-1, 0).RGBA()
	got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
	if got != want {
		t.Errorf("top-right pixel = %v, want gradient top %v", got, want)
	}
}

func TestRenderCardEmptyForecast(t *testing.T) {
	data, err := RenderCard(nil, forecast.WeekForecast{CityName: "Valencia", Days: []forecast.DaySummary{}})
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	decodeCard(t, data)
}

func TestRenderCardWithBanner(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			src.SetRGBA(x, y, color.RGBA{10, 200, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	data, err := RenderCard(buf.Bytes(), forecast.WeekForecast{CityName: "Madrid"})
	if err != nil {
		t.Fatalf("RenderCard: %v", err)
	}
	img := decodeCard(t, data)
	r, g, b, _ := img.At(CardWidth-1, 0).RGBA()
	if uint8(r>>8) != 10 || uint8(g>>8) != 200 || uint8(b>>8) != 30 {
		t.Errorf("top-right pixel = %d,%d,%d, want banner colour", r>>8, g>>8, b>>8)
	}
}

func TestCardCache(t *testing.T) {
	c := NewCardCache(time.Hour)
	if _, ok := c.Get("valencia"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("valencia", []byte("png"))
	if data, ok := c.Get("valencia"); !ok || string(data) != "png" {
		t.Errorf("Get = %q, %v", data, ok)
	}

	expired := NewCardCache(-time.Second)
	expired.Set("valencia", []byte("png"))
	if _, ok := expired.Get("valencia"); ok {
		t.Error("expired entry should miss")
	}
}

func TestBannerCache(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	key := forecast.BannerKey(forecast.BandHot, forecast.SkyClear, forecast.TimeDay)
	if _, ok := c.Get(key); ok {
		t.Error("empty cache should miss")
	}
	if err := c.Set(key, []byte("banner")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, ok := c.Get(key); !ok || string(data) != "banner" {
		t.Errorf("Get = %q, %v", data, ok)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	keys := c.List()
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("List = %v, want [%s]", keys, key)
	}

	if _, ok := c.GetAnyWithPrefix("hot_"); !ok {
		t.Error("GetAnyWithPrefix(hot_) should find the banner")
	}
	if _, ok := c.GetAnyWithPrefix("freezing_"); ok {
		t.Error("GetAnyWithPrefix(freezing_) should miss")
	}

	stale := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(c.path(key), stale, stale); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("stale banner should miss")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(""); err == nil {
		t.Error("expected error without api key")
	}
}
