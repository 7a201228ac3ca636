// 실행 설정 로딩
//
// .env 파일(있으면)을 먼저 읽고 환경변수로 덮어쓴다.
// 필수값:
//   - MC_API_KEY_ID, MC_API_KEY_SECRET: Monte Carlo API 키
//   - SINKS에 catalog가 있으면 DATAHUB_GMS_URL

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SinkCatalog  = "catalog"
	SinkPostgres = "postgres"
	SinkNATS     = "nats"
)

type Config struct {
	MonteCarlo MonteCarloConfig
	Catalog    CatalogConfig
	Sync       SyncConfig
	Postgres   PostgresConfig
	NATS       NATSConfig
	Redis      RedisConfig
	Slack      SlackConfig
	Server     ServerConfig
	Auth       AuthConfig
	Log        LogConfig

	// 설정 로딩 중 읽은 .env 경로 (없으면 빈 문자열)
	EnvFile string
}

type MonteCarloConfig struct {
	APIURL          string
	APIKeyID        string
	APIKeySecret    string
	BatchSize       int
	PageTimeout     time.Duration
	MaxRetries      int
	AssetsBaseURL   string
	MonitorsBaseURL string
}

type CatalogConfig struct {
	GMSURL string
	Token  string
	Env    string
	Actor  string
	Sinks  []string
}

// SyncConfig - 실행 주기 및 assertion/incident 고정 입력값
type SyncConfig struct {
	Interval time.Duration
	LockTTL  time.Duration

	EmitAssertion      bool
	AssertionID        string
	AssertionPlatform  string
	AssertionDataset   string
	AssertionOperator  string
	AssertionThreshold int64
	AssertionRowCount  int64

	EmitIncident        bool
	IncidentID          string
	IncidentState       string
	IncidentPriority    int
	IncidentTitle       string
	IncidentDescription string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

func Load() (*Config, error) {
	envFile := ""
	for _, path := range []string{".env", "../.env", "/app/.env"} {
		if err := godotenv.Load(path); err == nil {
			envFile = path
			break
		}
	}

	cfg := &Config{
		EnvFile: envFile,
		MonteCarlo: MonteCarloConfig{
			APIURL:          getenv("MC_API_URL", "https://api.getmontecarlo.com/graphql"),
			APIKeyID:        os.Getenv("MC_API_KEY_ID"),
			APIKeySecret:    os.Getenv("MC_API_KEY_SECRET"),
			AssetsBaseURL:   getenv("MC_ASSETS_BASE_URL", "https://getmontecarlo.com/assets"),
			MonitorsBaseURL: getenv("MC_MONITORS_BASE_URL", "https://getmontecarlo.com/monitors"),
		},
		Catalog: CatalogConfig{
			GMSURL: os.Getenv("DATAHUB_GMS_URL"),
			Token:  os.Getenv("DATAHUB_GMS_TOKEN"),
			Env:    getenv("DATAHUB_ENV", "PROD"),
			Actor:  getenv("DATAHUB_ACTOR", "urn:li:corpuser:datahub"),
			Sinks:  splitList(strings.ToLower(getenv("SINKS", SinkCatalog))),
		},
		Sync: SyncConfig{
			AssertionID:         getenv("ASSERTION_ID", "securities_ingest"),
			AssertionPlatform:   getenv("ASSERTION_PLATFORM", "SNOWFLAKE"),
			AssertionDataset:    getenv("ASSERTION_DATASET", "Finance.public.securities"),
			AssertionOperator:   getenv("ASSERTION_OPERATOR", "GREATER_THAN"),
			IncidentID:          getenv("INCIDENT_ID", "securities_ingest"),
			IncidentState:       getenv("INCIDENT_STATE", "OPEN"),
			IncidentTitle:       getenv("INCIDENT_TITLE", "Data Quality Incident"),
			IncidentDescription: getenv("INCIDENT_DESCRIPTION", "Data Quality Incident Description"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		NATS: NATSConfig{
			URL:     getenv("NATS_URL", "nats://localhost:4222"),
			Subject: getenv("NATS_SUBJECT", "datahub.mcp"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Slack: SlackConfig{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Log: LogConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
	}

	var err error
	if cfg.MonteCarlo.BatchSize, err = getInt("MC_BATCH_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.MonteCarlo.MaxRetries, err = getInt("MC_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MonteCarlo.PageTimeout, err = getDuration("MC_PAGE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Sync.Interval, err = getDuration("SYNC_INTERVAL", "0s"); err != nil {
		return nil, err
	}
	if cfg.Sync.LockTTL, err = getDuration("SYNC_LOCK_TTL", "15m"); err != nil {
		return nil, err
	}
	if cfg.Sync.EmitAssertion, err = getBool("EMIT_ASSERTION", true); err != nil {
		return nil, err
	}
	if cfg.Sync.EmitIncident, err = getBool("EMIT_INCIDENT", true); err != nil {
		return nil, err
	}
	if cfg.Sync.AssertionThreshold, err = getInt64("ASSERTION_THRESHOLD", 10000); err != nil {
		return nil, err
	}
	if cfg.Sync.AssertionRowCount, err = getInt64("ASSERTION_ROW_COUNT", 20000); err != nil {
		return nil, err
	}
	if cfg.Sync.IncidentPriority, err = getInt("INCIDENT_PRIORITY", 1); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = getDuration("JWT_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.Log.Development, err = getBool("LOG_DEVELOPMENT", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := map[string]string{
		"MC_API_KEY_ID":     c.MonteCarlo.APIKeyID,
		"MC_API_KEY_SECRET": c.MonteCarlo.APIKeySecret,
		"MC_API_URL":        c.MonteCarlo.APIURL,
	}
	if c.HasSink(SinkCatalog) {
		required["DATAHUB_GMS_URL"] = c.Catalog.GMSURL
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.MonteCarlo.BatchSize < 1 {
		return fmt.Errorf("MC_BATCH_SIZE must be positive")
	}
	if c.MonteCarlo.MaxRetries < 0 {
		return fmt.Errorf("MC_MAX_RETRIES must not be negative")
	}
	if c.MonteCarlo.PageTimeout < time.Second {
		return fmt.Errorf("MC_PAGE_TIMEOUT must be at least 1 second")
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}

	for _, sink := range c.Catalog.Sinks {
		switch sink {
		case SinkCatalog, SinkPostgres, SinkNATS:
		default:
			return fmt.Errorf("unsupported sink: %s", sink)
		}
	}
	if len(c.Catalog.Sinks) == 0 {
		return fmt.Errorf("SINKS must name at least one sink")
	}
	return nil
}

// HasSink - SINKS에 name이 포함되어 있는지
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Catalog.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
