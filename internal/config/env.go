package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	// Secret shared with the task dispatcher; requests carrying a different
	// value are rejected before any work starts.
	Secret string `envconfig:"SECRET" required:"true"`
}

type LLMEnv struct {
	Provider      string  `envconfig:"LLM_PROVIDER" default:"openai"`
	Model         string  `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	Temperature   float32 `envconfig:"LLM_TEMPERATURE" default:"0.1"`
	OpenAIAPIKey  string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `envconfig:"OPENAI_BASE_URL"`
}

type GitHubEnv struct {
	Token   string `envconfig:"GITHUB_TOKEN"`
	Owner   string `envconfig:"GITHUB_OWNER"`
	APIBase string `envconfig:"GITHUB_API_BASE" default:"https://api.github.com"`
}

type JournalEnv struct {
	Type    string `envconfig:"JOURNAL_TYPE" default:"local"`
	BaseDir string `envconfig:"JOURNAL_BASE_DIR" default:".sitewright/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"JOURNAL_S3_BUCKET"`
	S3Prefix string `envconfig:"JOURNAL_S3_PREFIX" default:"sitewright/"`
	S3Region string `envconfig:"JOURNAL_S3_REGION" default:"ap-northeast-1"`
}

type Env struct {
	BaseEnv
	LLMEnv
	GitHubEnv
	JournalEnv
}

const namespace = "SITEWRIGHT"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
