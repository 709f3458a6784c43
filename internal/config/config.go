package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
)

const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Speech    SpeechConfig
	STT       STTConfig
	Translate TranslateConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout int // seconds
	EnvFile        string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SpeechConfig covers both synthesis backends and the stitching binary.
type SpeechConfig struct {
	AzureKey       string
	AzureRegion    string
	AzureBaseURL   string // default: "https://<region>.tts.speech.microsoft.com"
	GoogleTTSURL   string // default: "https://translate.google.com/translate_tts"
	FFmpegBin      string // default: "ffmpeg"
	DefaultQuality string // "standard" or "premium"
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
}

type TranslateConfig struct {
	BaseURL     string // default: "https://translate.googleapis.com"
	CacheTTLMin int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from the environment. A .env file in the working
// directory (or SERVER_ENV_FILE) is loaded first; existing variables win.
func Load() (*Config, error) {
	envFile := getEnv("SERVER_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	requestTimeout, err := getEnvInt("SERVER_REQUEST_TIMEOUT", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_REQUEST_TIMEOUT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cacheTTL, err := getEnvInt("TRANSLATE_CACHE_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSLATE_CACHE_TTL_MINUTES: %w", err)
	}

	storageSecure, err := getEnvBool("STORAGE_SECURE", true)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_SECURE: %w", err)
	}

	rpm, err := getEnvInt("RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPM: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RequestTimeout: requestTimeout,
			EnvFile:        envFile,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Speech: SpeechConfig{
			AzureKey:       getEnv(EnvAzureSpeechKey, ""),
			AzureRegion:    getEnv(EnvAzureSpeechRegion, ""),
			AzureBaseURL:   getEnv("AZURE_SPEECH_BASE_URL", ""),
			GoogleTTSURL:   getEnv("GOOGLE_TTS_URL", ""),
			FFmpegBin:      getEnv("FFMPEG_BIN", "ffmpeg"),
			DefaultQuality: strings.ToLower(getEnv("TTS_DEFAULT_QUALITY", "premium")),
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		Translate: TranslateConfig{
			BaseURL:     getEnv("TRANSLATE_BASE_URL", ""),
			CacheTTLMin: cacheTTL,
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", "voicebridge"),
			Region:    getEnv("STORAGE_REGION", ""),
			Secure:    storageSecure,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: rpm,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PremiumConfigured reports whether both Azure credentials are present.
func (s SpeechConfig) PremiumConfigured() bool {
	return s.AzureKey != "" && s.AzureRegion != ""
}

// STTConfigured reports whether the selected transcription backend can run.
func (s STTConfig) STTConfigured() bool {
	return s.Backend == "local" || s.OpenAIKey != ""
}

// StorageEnabled reports whether artifact upload is configured.
func (s StorageConfig) StorageEnabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

func (c *Config) Validate() error {
	var problems []string
	if c.Speech.DefaultQuality != "standard" && c.Speech.DefaultQuality != "premium" {
		problems = append(problems, "TTS_DEFAULT_QUALITY must be standard or premium")
	}
	if c.STT.Backend != "openai" && c.STT.Backend != "local" {
		problems = append(problems, "STT_BACKEND must be openai or local")
	}
	if c.Speech.AzureRegion != "" {
		if err := tts.ValidateRegion(c.Speech.AzureRegion); err != nil {
			problems = append(problems, EnvAzureSpeechRegion+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SaveSpeechCredentials merges the premium credentials into the env file at
// path, keeping any other keys already there, and exports them to the process.
func SaveSpeechCredentials(path, key, region string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		values = map[string]string{}
	}

	values[EnvAzureSpeechKey] = key
	values[EnvAzureSpeechRegion] = region

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := os.Setenv(EnvAzureSpeechKey, key); err != nil {
		return err
	}
	return os.Setenv(EnvAzureSpeechRegion, region)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
