package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxUpstreamTimeout = 60 * time.Second

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Outbound HTTP.
	UserAgent       string
	UpstreamTimeout time.Duration

	// Board status extraction.
	BoardsPrimaryURL      string
	BoardsFallbackURL     string
	BoardsCacheTTL        time.Duration
	BoardsMinRecords      int
	BoardsMaxLineLength   int
	BoardsRefreshInterval time.Duration

	// Conditions sources.
	FlowURLBase        string
	FlowDefaultMeasure string
	TelemetryCSVURL    string
	DischargeURL       string
	DischargeSite      string
	TWClientID         string
	TWClientSecret     string
	WeatherURLBase     string
	MetOfficeAPIKey    string
	WeatherDefaultLat  float64
	WeatherDefaultLon  float64
	ProxyCacheTTL      time.Duration
	ProxyCacheSize     int

	// Kafka publishing of fresh board results.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaBoardsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	if upstreamTimeout > maxUpstreamTimeout {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: must not exceed %s", maxUpstreamTimeout)
	}

	cacheTTL, err := parseDuration("BOARDS_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	proxyTTL, err := parseDuration("PROXY_CACHE_TTL", "2m")
	if err != nil {
		return nil, err
	}

	refresh, err := parseRefreshInterval()
	if err != nil {
		return nil, err
	}

	minRecords, err := parsePositiveInt("BOARDS_MIN_RECORDS", 5)
	if err != nil {
		return nil, err
	}

	maxLine, err := parsePositiveInt("BOARDS_MAX_LINE_LENGTH", 160)
	if err != nil {
		return nil, err
	}

	proxySize, err := parsePositiveInt("PROXY_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	lat, err := parseCoordinate("WEATHER_DEFAULT_LAT", "51.50144", 90)
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate("WEATHER_DEFAULT_LON", "-0.870961", 180)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UserAgent:       sharedcfg.EnvOrDefault("USER_AGENT", "FerryLaneSwimming/1.0"),
		UpstreamTimeout: upstreamTimeout,

		BoardsPrimaryURL:      sharedcfg.EnvOrDefault("BOARDS_PRIMARY_URL", "https://www.gov.uk/guidance/river-thames-current-river-conditions"),
		BoardsFallbackURL:     sharedcfg.EnvOrDefault("BOARDS_FALLBACK_URL", "https://visitthames.co.uk/about-the-river/river-conditions"),
		BoardsCacheTTL:        cacheTTL,
		BoardsMinRecords:      minRecords,
		BoardsMaxLineLength:   maxLine,
		BoardsRefreshInterval: refresh,

		FlowURLBase:        sharedcfg.EnvOrDefault("FLOW_URL_BASE", "https://environment.data.gov.uk/flood-monitoring"),
		FlowDefaultMeasure: sharedcfg.EnvOrDefault("FLOW_DEFAULT_MEASURE", "2604TH-flow--i-15_min-m3_s"),
		TelemetryCSVURL:    sharedcfg.EnvOrDefault("TELEMETRY_CSV_URL", "https://dl1.findlays.net/rawdata/shiplake-5m-averages-latest.csv"),
		DischargeURL:       sharedcfg.EnvOrDefault("DISCHARGE_URL", "https://prod-tw-opendata-app.uk-e1.cloudhub.io/data/STE/v1/DischargeCurrentStatus"),
		DischargeSite:      sharedcfg.EnvOrDefault("DISCHARGE_DEFAULT_SITE", "Wargrave"),
		TWClientID:         os.Getenv("TW_CLIENT_ID"),
		TWClientSecret:     os.Getenv("TW_CLIENT_SECRET"),
		WeatherURLBase:     sharedcfg.EnvOrDefault("WEATHER_URL_BASE", "https://data.hub.api.metoffice.gov.uk/sitespecific/v0/point"),
		MetOfficeAPIKey:    os.Getenv("METOFFICE_API_KEY"),
		WeatherDefaultLat:  lat,
		WeatherDefaultLon:  lon,
		ProxyCacheTTL:      proxyTTL,
		ProxyCacheSize:     proxySize,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaBoardsTopic: sharedcfg.EnvOrDefault("KAFKA_BOARDS_TOPIC", "river-board-statuses"),
	}

	if cfg.BoardsPrimaryURL == "" {
		return nil, errors.New("BOARDS_PRIMARY_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaBoardsTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BOARDS_TOPIC is empty")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseRefreshInterval allows zero, which disables background refresh.
func parseRefreshInterval() (time.Duration, error) {
	s := os.Getenv("BOARDS_REFRESH_INTERVAL")
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.New("invalid BOARDS_REFRESH_INTERVAL")
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseCoordinate(key, def string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || math.IsNaN(f) || f < -limit || f > limit {
		return 0, fmt.Errorf("invalid %s: must be a number within ±%g", key, limit)
	}
	return f, nil
}
