package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Inference backends.
const (
	BackendHuggingFace = "huggingface"
	BackendChatGPT     = "chatgpt"
	BackendExtractive  = "extractive"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Inference  InferenceConfig  `yaml:"inference"`
	Tokenizer  TokenizerConfig  `yaml:"tokenizer"`
	Cache      CacheConfig      `yaml:"cache"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
	Auth           AuthConfig      `yaml:"auth"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig enables bearer token checks on the API.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// GenerationConfig holds decoding defaults.
type GenerationConfig struct {
	MaxLength int  `yaml:"maxLength"`
	MinLength int  `yaml:"minLength"`
	NumBeams  int  `yaml:"numBeams"`
	DoSample  bool `yaml:"doSample"`
}

// SummarizerConfig tunes the summarization pipeline.
type SummarizerConfig struct {
	Defaults         GenerationConfig `yaml:"defaults"`
	MaxNumBeams      int              `yaml:"maxNumBeams"`
	Workers          int              `yaml:"workers"`
	OverlapSentences int              `yaml:"overlapSentences"`
	MaxDepth         int              `yaml:"maxDepth"`
	ChunkTokenBudget int              `yaml:"chunkTokenBudget"`
}

// ModelConfig registers a model and its input window.
type ModelConfig struct {
	ID             string `yaml:"id"`
	MaxInputTokens int    `yaml:"maxInputTokens"`
}

// InferenceConfig selects the backend and the model catalog.
type InferenceConfig struct {
	Backend      string            `yaml:"backend"`
	DefaultModel string            `yaml:"defaultModel"`
	LoadTimeout  time.Duration     `yaml:"loadTimeout"`
	Models       []ModelConfig     `yaml:"models"`
	HuggingFace  HuggingFaceConfig `yaml:"huggingface"`
	OpenAI       OpenAIConfig      `yaml:"openai"`
}

// HuggingFaceConfig contains Inference API settings.
type HuggingFaceConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of remote inference.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"maxRequests"`
	Interval     time.Duration `yaml:"interval"`
	OpenTimeout  time.Duration `yaml:"openTimeout"`
	MinRequests  uint32        `yaml:"minRequests"`
	FailureRatio float64       `yaml:"failureRatio"`
}

// OpenAIConfig contains ChatGPT/OpenAI settings.
type OpenAIConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// TokenizerConfig selects how input length is measured.
type TokenizerConfig struct {
	Kind     string `yaml:"kind"`
	Encoding string `yaml:"encoding"`
}

// CacheConfig controls the chunk summary cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"maxEntries"`
	Valkey     ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for shared cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// AnalysisConfig controls the text analysis endpoint.
type AnalysisConfig struct {
	TopKeywords int `yaml:"topKeywords"`
}

// Load reads configuration from an optional .env file, a YAML file and environment
// variables, in that order of increasing precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	setBool("AUTH_ENABLED", &cfg.HTTP.Auth.Enabled)
	setString("AUTH_SECRET", &cfg.HTTP.Auth.Secret)
	setString("AUTH_ISSUER", &cfg.HTTP.Auth.Issuer)
	setDuration("AUTH_TOKEN_TTL", &cfg.HTTP.Auth.TokenTTL)

	setInt("SUMMARY_MAX_LENGTH", &cfg.Summarizer.Defaults.MaxLength)
	setInt("SUMMARY_MIN_LENGTH", &cfg.Summarizer.Defaults.MinLength)
	setInt("SUMMARY_NUM_BEAMS", &cfg.Summarizer.Defaults.NumBeams)
	setBool("SUMMARY_DO_SAMPLE", &cfg.Summarizer.Defaults.DoSample)
	setInt("SUMMARY_WORKERS", &cfg.Summarizer.Workers)
	setInt("SUMMARY_OVERLAP_SENTENCES", &cfg.Summarizer.OverlapSentences)
	setInt("SUMMARY_MAX_DEPTH", &cfg.Summarizer.MaxDepth)
	setInt("SUMMARY_CHUNK_TOKEN_BUDGET", &cfg.Summarizer.ChunkTokenBudget)

	setString("INFERENCE_BACKEND", &cfg.Inference.Backend)
	setString("INFERENCE_DEFAULT_MODEL", &cfg.Inference.DefaultModel)
	setDuration("INFERENCE_LOAD_TIMEOUT", &cfg.Inference.LoadTimeout)
	setString("HF_BASE_URL", &cfg.Inference.HuggingFace.BaseURL)
	setString("HF_API_TOKEN", &cfg.Inference.HuggingFace.Token)
	setDuration("HF_TIMEOUT", &cfg.Inference.HuggingFace.Timeout)
	setString("LLM_API_KEY", &cfg.Inference.OpenAI.APIKey)
	setString("LLM_BASE_URL", &cfg.Inference.OpenAI.BaseURL)

	setString("TOKENIZER_KIND", &cfg.Tokenizer.Kind)
	setString("TOKENIZER_ENCODING", &cfg.Tokenizer.Encoding)

	setBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	setDuration("CACHE_TTL", &cfg.Cache.TTL)
	setBool("CACHE_VALKEY_ENABLED", &cfg.Cache.Valkey.Enabled)
	setString("CACHE_VALKEY_ADDR", &cfg.Cache.Valkey.Addr)

	setInt("ANALYSIS_TOP_KEYWORDS", &cfg.Analysis.TopKeywords)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/summaries",
					"/api/v1/models/active",
				},
			},
			Auth: AuthConfig{
				Issuer:   "text-summarizer",
				TokenTTL: time.Hour,
			},
		},
		Summarizer: SummarizerConfig{
			Defaults: GenerationConfig{
				MaxLength: 130,
				MinLength: 30,
				NumBeams:  4,
			},
			MaxNumBeams:      8,
			Workers:          4,
			OverlapSentences: 0,
			MaxDepth:         3,
		},
		Inference: InferenceConfig{
			Backend:      BackendHuggingFace,
			DefaultModel: "facebook/bart-large-cnn",
			LoadTimeout:  30 * time.Second,
			Models: []ModelConfig{
				{ID: "facebook/bart-large-cnn", MaxInputTokens: 1024},
				{ID: "sshleifer/distilbart-cnn-12-6", MaxInputTokens: 1024},
				{ID: "google/pegasus-xsum", MaxInputTokens: 512},
				{ID: "t5-small", MaxInputTokens: 512},
				{ID: "t5-base", MaxInputTokens: 512},
			},
			HuggingFace: HuggingFaceConfig{
				Timeout: 60 * time.Second,
				Breaker: BreakerConfig{
					MaxRequests:  3,
					Interval:     10 * time.Second,
					OpenTimeout:  30 * time.Second,
					MinRequests:  5,
					FailureRatio: 0.6,
				},
			},
			OpenAI: OpenAIConfig{
				Timeout: 60 * time.Second,
			},
		},
		Tokenizer: TokenizerConfig{
			Kind:     "words",
			Encoding: "cl100k_base",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 10000,
			Valkey: ValkeyConfig{
				Prefix: "summarizer",
			},
		},
		Analysis: AnalysisConfig{
			TopKeywords: 10,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.HTTP.Auth.Enabled {
		if len(c.HTTP.Auth.Secret) < 32 {
			return errors.New("http.auth.secret must be at least 32 characters when auth is enabled")
		}
		if c.HTTP.Auth.TokenTTL <= 0 {
			return errors.New("http.auth.tokenTtl must be positive")
		}
	}

	d := c.Summarizer.Defaults
	if d.MaxLength <= 0 {
		return errors.New("summarizer.defaults.maxLength must be positive")
	}
	if d.MinLength < 0 || d.MinLength > d.MaxLength {
		return errors.New("summarizer.defaults.minLength must be between 0 and maxLength")
	}
	if d.NumBeams < 1 {
		return errors.New("summarizer.defaults.numBeams must be at least 1")
	}
	if c.Summarizer.MaxNumBeams > 0 && d.NumBeams > c.Summarizer.MaxNumBeams {
		return errors.New("summarizer.defaults.numBeams cannot exceed maxNumBeams")
	}
	if c.Summarizer.Workers < 0 {
		return errors.New("summarizer.workers cannot be negative")
	}
	if c.Summarizer.OverlapSentences < 0 {
		return errors.New("summarizer.overlapSentences cannot be negative")
	}
	if c.Summarizer.MaxDepth < 0 {
		return errors.New("summarizer.maxDepth cannot be negative")
	}
	if c.Summarizer.ChunkTokenBudget < 0 {
		return errors.New("summarizer.chunkTokenBudget cannot be negative")
	}

	switch c.Inference.Backend {
	case BackendHuggingFace, BackendExtractive:
	case BackendChatGPT:
		if strings.TrimSpace(c.Inference.OpenAI.APIKey) == "" {
			return errors.New("inference.openai.apiKey cannot be empty for the chatgpt backend")
		}
	default:
		return fmt.Errorf("inference.backend %q is not supported", c.Inference.Backend)
	}
	if len(c.Inference.Models) == 0 {
		return errors.New("inference.models cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Inference.Models))
	for _, m := range c.Inference.Models {
		if strings.TrimSpace(m.ID) == "" {
			return errors.New("inference.models[].id cannot be empty")
		}
		if m.MaxInputTokens <= 0 {
			return fmt.Errorf("inference model %q needs a positive maxInputTokens", m.ID)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("inference model %q is listed twice", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if c.Inference.DefaultModel != "" {
		if _, ok := seen[c.Inference.DefaultModel]; !ok {
			return fmt.Errorf("inference.defaultModel %q is not in inference.models", c.Inference.DefaultModel)
		}
	}

	switch strings.ToLower(c.Tokenizer.Kind) {
	case "", "words", "tiktoken":
	default:
		return fmt.Errorf("tokenizer.kind %q is not supported", c.Tokenizer.Kind)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Analysis.TopKeywords <= 0 {
		return errors.New("analysis.topKeywords must be positive")
	}
	return nil
}
