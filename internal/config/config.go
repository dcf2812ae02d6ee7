package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service. It is built
// once at process start and passed by value into constructors; the judge and
// tutor credentials are service-level configuration, never user input.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	JWTTokenTTL         time.Duration
	JudgeBaseURL        string
	JudgeAPIKey         string
	JudgeAPIHost        string
	JudgeTimeout        time.Duration
	TutorModel          string
	TutorTimeout        time.Duration
	TutorMaxTokens      int
	ProblemCacheTTL     time.Duration
	SweepSchedule       string
	RegistrationMaxAge  time.Duration
	ConfirmationCodeTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODECOACH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeCoach API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.token_ttl", "24h")
	v.SetDefault("judge.base_url", "https://judge0-ce.p.rapidapi.com")
	v.SetDefault("judge.timeout", "15s")
	v.SetDefault("tutor.model", "gpt-4o-mini")
	v.SetDefault("tutor.timeout", "30s")
	v.SetDefault("tutor.max_tokens", 1024)
	v.SetDefault("problem.cache_ttl", "10m")
	v.SetDefault("sweep.schedule", "@every 1h")
	v.SetDefault("registration.max_age", "24h")
	v.SetDefault("confirmation.code_ttl", "15m")

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		JudgeBaseURL:   v.GetString("judge.base_url"),
		JudgeAPIKey:    v.GetString("judge.api_key"),
		JudgeAPIHost:   v.GetString("judge.api_host"),
		TutorModel:     v.GetString("tutor.model"),
		TutorMaxTokens: v.GetInt("tutor.max_tokens"),
		SweepSchedule:  v.GetString("sweep.schedule"),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"jwt.token_ttl", &cfg.JWTTokenTTL},
		{"judge.timeout", &cfg.JudgeTimeout},
		{"tutor.timeout", &cfg.TutorTimeout},
		{"problem.cache_ttl", &cfg.ProblemCacheTTL},
		{"registration.max_age", &cfg.RegistrationMaxAge},
		{"confirmation.code_ttl", &cfg.ConfirmationCodeTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.TutorMaxTokens <= 0 {
		cfg.TutorMaxTokens = 1024
	}

	return cfg, nil
}
