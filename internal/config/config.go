package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. INTERVIEW_PORT or
// INTERVIEW_SPEECH_URL.
const EnvPrefix = "INTERVIEW"

// Config holds the server settings. Scoring constants are not here; they
// live in the scoring profile named by Profile.
type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	ProfilesDir string `mapstructure:"profiles_dir"`
	Profile     string `mapstructure:"profile"`

	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	ScoreCacheTTL time.Duration `mapstructure:"score_cache_ttl"`

	MaxFramesPerSecond  float64 `mapstructure:"max_frames_per_second"`
	FrameBurst          int     `mapstructure:"frame_burst"`
	InterviewsPerMinute int     `mapstructure:"interviews_per_minute"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
	EnableHSTS     bool     `mapstructure:"enable_hsts"`
	Questions      []string `mapstructure:"questions"`

	Speech SpeechConfig `mapstructure:"speech"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// SpeechConfig points at the text-to-speech service; an empty URL only logs prompts
type SpeechConfig struct {
	URL     string        `mapstructure:"url"`
	Lang    string        `mapstructure:"lang"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig enables shared rate limits; an empty Addr keeps them in memory
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("profiles_dir", "./profiles")
	v.SetDefault("profile", "v2")
	v.SetDefault("session_ttl", 2*time.Hour)
	v.SetDefault("score_cache_ttl", 15*time.Minute)
	v.SetDefault("max_frames_per_second", 30.0)
	v.SetDefault("frame_burst", 60)
	v.SetDefault("interviews_per_minute", 10)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("enable_hsts", false)
	v.SetDefault("questions", []string{})
	v.SetDefault("speech.url", "")
	v.SetDefault("speech.lang", "en-US")
	v.SetDefault("speech.timeout", 5*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads defaults, then the optional config file at path, then
// INTERVIEW_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL))
	}
	if c.ScoreCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("score_cache_ttl must be positive, got %s", c.ScoreCacheTTL))
	}
	if c.MaxFramesPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_frames_per_second must not be negative, got %g", c.MaxFramesPerSecond))
	}
	if c.FrameBurst < 0 {
		errs = append(errs, fmt.Errorf("frame_burst must not be negative, got %d", c.FrameBurst))
	}
	if c.InterviewsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("interviews_per_minute must not be negative, got %d", c.InterviewsPerMinute))
	}
	for i, q := range c.Questions {
		if strings.TrimSpace(q) == "" {
			errs = append(errs, fmt.Errorf("questions[%d] is blank", i))
		}
	}
	return errors.Join(errs...)
}
