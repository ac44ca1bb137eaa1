package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lolweather/lolweather/internal/api"
	"github.com/lolweather/lolweather/internal/cities"
	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/ingest"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/store"
	"github.com/lolweather/lolweather/internal/weather"
)

type Globals struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`

	APIKey   string        `name:"api-key" env:"OWM_API_KEY" help:"OpenWeatherMap API key."`
	BaseURL  string        `name:"base-url" env:"OWM_BASE_URL" default:"${owm_base_url}" help:"OpenWeatherMap API base URL."`
	DB       string        `name:"db" env:"LOLWEATHER_DB" default:"data/lolweather.db" help:"Path to SQLite database. Empty disables the fetch archive."`
	Timezone string        `name:"timezone" env:"LOLWEATHER_TZ" default:"Europe/Madrid" help:"Timezone used to bucket forecast days."`
	Lang     string        `name:"lang" env:"LOLWEATHER_LANG" default:"es" enum:"es,en" help:"Provider and label language (es, en)."`
	Rate     float64       `name:"rate" default:"1" help:"Provider requests per second."`
	Burst    int           `name:"burst" default:"4" help:"Provider request burst."`
	Retry    time.Duration `name:"retry" default:"30s" help:"Maximum time spent retrying rate-limited calls."`
}

type CLI struct {
	Globals

	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API."`
	Current  CurrentCmd  `cmd:"" help:"Print current conditions as JSON."`
	Forecast ForecastCmd `cmd:"" help:"Print the themed forecast as JSON."`
	Complete CompleteCmd `cmd:"" help:"Print the forecast with current conditions as JSON."`
	Cities   struct {
		Search  CitySearchCmd  `cmd:"" help:"Search the city catalogue."`
		Popular CityPopularCmd `cmd:"" help:"List popular cities."`
	} `cmd:"" help:"City catalogue."`
	Archive struct {
		Stats ArchiveStatsCmd `cmd:"" help:"Summarize archived provider responses."`
		Show  ArchiveShowCmd  `cmd:"" help:"Print the latest archived response for a location."`
	} `cmd:"" help:"Archived provider responses."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lolweather"),
		kong.Description("Themed weather forecasts."),
		kong.UsageOnError(),
		kong.Vars{"owm_base_url": owm.DefaultBaseURL},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

// app holds what the weather commands share.
type app struct {
	repo  *weather.Repository
	store *store.Store
	loc   *time.Location
}

func (g *Globals) open() (*app, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("OWM_API_KEY environment variable required")
	}

	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		log.Printf("Warning: could not load %s timezone, using UTC: %v", g.Timezone, err)
		loc = time.UTC
	}

	client := owm.NewClient(owm.Config{
		APIKey:          g.APIKey,
		BaseURL:         g.BaseURL,
		Lang:            g.Lang,
		RPS:             g.Rate,
		Burst:           g.Burst,
		MaxRetryElapsed: g.Retry,
	})
	assembler := forecast.NewAssembler(loc, forecast.WithLocale(forecast.ParseLocale(g.Lang)))

	a := &app{loc: loc}
	if g.DB == "" {
		a.repo = weather.NewRepository(client, assembler, nil)
		return a, nil
	}

	if err := os.MkdirAll(filepath.Dir(g.DB), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.Open(g.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.store = st
	a.repo = weather.NewRepository(client, assembler, st)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

type ServeCmd struct {
	Port      string `name:"port" env:"PORT" default:"8080" help:"HTTP server port."`
	ImageDir  string `name:"image-dir" default:"data/images" help:"Directory for cached banners."`
	OpenAIKey string `name:"openai-key" env:"OPENAI_API_KEY" help:"OpenAI API key for banner generation."`
	NoPoll    bool   `name:"no-poll" help:"Disable background refresh of favorite cities."`
	Retention int    `name:"retention-days" default:"7" help:"Days to keep archived provider payloads."`
}

func (c *ServeCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.NewServer(a.repo, a.store, api.Config{
		Port:      c.Port,
		Location:  a.loc,
		ImageDir:  c.ImageDir,
		OpenAIKey: c.OpenAIKey,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if a.store != nil && !c.NoPoll {
		scheduler := ingest.NewScheduler(a.repo, a.store, a.loc)
		scheduler.SetRetentionDays(c.Retention)
		// Share the server's mutex so banners are not generated twice
		if gen := server.ImageGenerator(); gen != nil {
			scheduler.SetImageGenerator(gen, server.ImageCache(), server.ImageGenMutex())
		}
		go scheduler.Run(ctx)
	} else {
		log.Println("polling disabled")
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

// Location selects a city or coordinates, mirroring the HTTP query params.
type Location struct {
	City   string    `arg:"" optional:"" help:"City name."`
	Coords []float64 `name:"coords" sep:"," placeholder:"LAT,LON" help:"Coordinates instead of a city."`
}

func (l Location) query() (owm.Query, error) {
	switch len(l.Coords) {
	case 0:
		return owm.ByCity(l.City), nil
	case 2:
		return owm.ByCoordinates(l.Coords[0], l.Coords[1]), nil
	default:
		return owm.Query{}, fmt.Errorf("%w: --coords takes LAT,LON", owm.ErrInvalidQuery)
	}
}

type CurrentCmd struct {
	Location
}

func (c *CurrentCmd) Run(g *Globals) error {
	return runWeather(g, func(ctx context.Context, repo *weather.Repository) (any, error) {
		q, err := c.query()
		if err != nil {
			return nil, err
		}
		res := repo.CurrentWeather(ctx, q)
		return res.Value, res.Err
	})
}

type ForecastCmd struct {
	Location
}

func (c *ForecastCmd) Run(g *Globals) error {
	return runWeather(g, func(ctx context.Context, repo *weather.Repository) (any, error) {
		q, err := c.query()
		if err != nil {
			return nil, err
		}
		res := repo.Forecast(ctx, q)
		return res.Value, res.Err
	})
}

type CompleteCmd struct {
	Location
}

func (c *CompleteCmd) Run(g *Globals) error {
	return runWeather(g, func(ctx context.Context, repo *weather.Repository) (any, error) {
		q, err := c.query()
		if err != nil {
			return nil, err
		}
		res := repo.CompleteWeather(ctx, q)
		return res.Value, res.Err
	})
}

func runWeather(g *Globals, fetch func(context.Context, *weather.Repository) (any, error)) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	v, err := fetch(ctx, a.repo)
	if err != nil {
		return fmt.Errorf("%s: %w", weather.Kind(err), err)
	}
	return printJSON(v)
}

type CitySearchCmd struct {
	Query string `arg:"" help:"Name, country code or country name."`
}

func (c *CitySearchCmd) Run(g *Globals) error {
	return printJSON(cities.Search(c.Query))
}

type CityPopularCmd struct{}

func (c *CityPopularCmd) Run(g *Globals) error {
	return printJSON(cities.Popular())
}

func openStore(g *Globals) (*store.Store, error) {
	if g.DB == "" {
		return nil, fmt.Errorf("--db is required")
	}
	st, err := store.Open(g.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

type ArchiveStatsCmd struct{}

func (c *ArchiveStatsCmd) Run(g *Globals) error {
	st, err := openStore(g)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.ArchiveStats()
	if err != nil {
		return err
	}
	return printJSON(stats)
}

type ArchiveShowCmd struct {
	Endpoint string `arg:"" enum:"weather,forecast" help:"Provider endpoint (weather, forecast)."`
	Location string `arg:"" help:"Location id: lowercased city name or LAT,LON with four decimals."`
}

func (c *ArchiveShowCmd) Run(g *Globals) error {
	st, err := openStore(g)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.LatestRawPayload(c.Endpoint, c.Location)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("nothing archived for %s %s", c.Endpoint, c.Location)
	}
	body, err := p.Body()
	if err != nil {
		return err
	}
	log.Printf("payload %d fetched %s", p.ID, p.FetchedAt.Format(time.RFC3339))
	_, err = os.Stdout.Write(append(body, '\n'))
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
