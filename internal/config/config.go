package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`
	StaticDir string `env:"STATIC_DIR" envDefault:"frontend"`

	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey    string        `env:"LLM_API_KEY"`
	LLMBaseURL   string        `env:"LLM_BASE_URL" envDefault:"https://api-inference.modelscope.cn/v1"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"Qwen/Qwen3-8B"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMTokenFile string        `env:"LLM_TOKEN_FILE" envDefault:"config/modelscope_token.txt"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// ModelScope exige enable_thinking=false en llamadas sin stream.
	LLMDisableThinking bool `env:"LLM_DISABLE_THINKING" envDefault:"true"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LLMCacheTTL   time.Duration `env:"LLM_CACHE_TTL" envDefault:"10m"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"30"`

	APIJWTSecret string `env:"API_JWT_SECRET"`
	LexiconFile  string `env:"LEXICON_FILE"`
}

// Nombres de variables que distintas plataformas usan para el token del modelo.
var tokenEnvCandidates = []string{
	"MODELSCOPE_TOKEN",
	"MODELSCOPE_API_TOKEN",
	"MODELSCOPE_API_KEY",
	"MSPACE_TOKEN",
	"MSPACE_API_TOKEN",
	"MSPACE_API_KEY",
	"OPENAI_API_KEY",
}

var ErrTokenNotFound = errors.New("llm token not found")

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return &cfg, nil
}

// ResolveLLMToken devuelve el token del proveedor OpenAI-compatible.
// Orden: LLM_API_KEY, variables conocidas de ModelScope/OpenAI y por ultimo el archivo de token.
func (c *Config) ResolveLLMToken() (string, error) {
	if v := strings.TrimSpace(c.LLMAPIKey); v != "" {
		return v, nil
	}
	for _, name := range tokenEnvCandidates {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	if c.LLMTokenFile != "" {
		data, err := os.ReadFile(c.LLMTokenFile)
		if err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				return v, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read token file %s: %w", c.LLMTokenFile, err)
		}
	}
	return "", fmt.Errorf("%w: set one of [LLM_API_KEY, %s] or write it to %s",
		ErrTokenNotFound, strings.Join(tokenEnvCandidates, ", "), c.LLMTokenFile)
}
