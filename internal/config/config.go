package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Practice Practice `yaml:"practice"`
}

// Practice tunes the daily question engine.
type Practice struct {
	Timezone             string   `yaml:"timezone"`
	DuplicatePolicy      string   `yaml:"duplicatePolicy"`
	MinAnswerLength      int      `yaml:"minAnswerLength"`
	ScoreStep            *float64 `yaml:"scoreStep"`
	Feedback             string   `yaml:"feedback"`
	Questions            []string `yaml:"questions"`
	PoolTTL              string   `yaml:"poolTTL"`
	RetryAttempts        *int     `yaml:"retryAttempts"`
	RetryInitialInterval string   `yaml:"retryInitialInterval"`
}

// Defaults applied when the YAML leaves a field out.
const (
	DefaultMinAnswerLength = 10
	DefaultScoreStep       = 5
	DefaultRetryAttempts   = 3
)

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// MinAnswer is the caller-level minimum answer length. Unset means the
// default; a negative value turns the check off.
func (p Practice) MinAnswer() int {
	switch {
	case p.MinAnswerLength < 0:
		return 0
	case p.MinAnswerLength == 0:
		return DefaultMinAnswerLength
	}
	return p.MinAnswerLength
}

func (p Practice) Step() float64 {
	if p.ScoreStep == nil {
		return DefaultScoreStep
	}
	return *p.ScoreStep
}

func (p Practice) Retries() int {
	if p.RetryAttempts == nil {
		return DefaultRetryAttempts
	}
	return *p.RetryAttempts
}
