// Package config loads the application configuration from a YAML file,
// overlays environment variables, and fills in defaults. Both binaries
// (server and worker) load the same file so they agree on queues, storage,
// and model endpoints.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP API surface.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	MaxUploadSizeMB int64    `yaml:"max_upload_size_mb"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// RedisConfig is shared by the task queue client and the worker server.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// StatusTTL bounds how long task status records survive in Redis.
	StatusTTL time.Duration `yaml:"status_ttl"`
}

// LocalStorageConfig backs the filesystem storage driver.
type LocalStorageConfig struct {
	Dir string `yaml:"dir"`
}

// MinioConfig backs the MinIO storage driver.
type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	UseSSL     bool   `yaml:"use_ssl"`
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucket_name"`
}

// S3Config backs the AWS S3 storage driver.
type S3Config struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucket_name"`
}

// StorageConfig selects and configures the file storage backend.
type StorageConfig struct {
	Type  string             `yaml:"type"` // local, minio, s3
	Local LocalStorageConfig `yaml:"local"`
	Minio MinioConfig        `yaml:"minio"`
	S3    S3Config           `yaml:"s3"`

	// Retention prunes raw uploads older than this age; zero keeps them
	// forever. Pruned documents keep their metadata and embedding but can
	// no longer be reprocessed.
	Retention time.Duration `yaml:"retention"`
}

// DatabaseConfig selects the metadata store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // memory or postgres
	URL    string `yaml:"url"`
}

// NLPConfig holds the model endpoints used by the pipeline and search.
type NLPConfig struct {
	ClassifierEndpoint string        `yaml:"classifier_endpoint"`
	NEREndpoint        string        `yaml:"ner_endpoint"`
	APIKey             string        `yaml:"api_key"`
	OllamaBaseURL      string        `yaml:"ollama_base_url"`
	EmbedModel         string        `yaml:"embed_model"`
	ChatModel          string        `yaml:"chat_model"`
	EmbedDimension     int           `yaml:"embed_dimension"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
}

// PipelineConfig tunes the background processing.
type PipelineConfig struct {
	Concurrency      int `yaml:"concurrency"`
	SummarySentences int `yaml:"summary_sentences"`
}

// SearchConfig tunes the query side.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// Config is the root of the configuration tree.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	NLP      NLPConfig      `yaml:"nlp"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Search   SearchConfig   `yaml:"search"`
}

// Load reads the config file at path, or the first of the default locations
// when path is empty. A missing file is not an error; the result is then
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	if path == "" {
		for _, loc := range []string{
			"config.yaml",
			"config.yml",
			filepath.Join("/etc/docuvault", "config.yaml"),
		} {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.MaxUploadSizeMB == 0 {
		config.Server.MaxUploadSizeMB = 50
	}

	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
	if config.Redis.StatusTTL == 0 {
		config.Redis.StatusTTL = 24 * time.Hour
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}
	if config.Storage.Local.Dir == "" {
		config.Storage.Local.Dir = "data/uploads"
	}

	if config.Database.Driver == "" {
		config.Database.Driver = "memory"
	}

	if config.NLP.ClassifierEndpoint == "" {
		config.NLP.ClassifierEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"
	}
	if config.NLP.NEREndpoint == "" {
		config.NLP.NEREndpoint = "https://api-inference.huggingface.co/models/dslim/bert-base-NER"
	}
	if config.NLP.OllamaBaseURL == "" {
		config.NLP.OllamaBaseURL = "http://localhost:11434"
	}
	if config.NLP.EmbedModel == "" {
		config.NLP.EmbedModel = "nomic-embed-text:latest"
	}
	if config.NLP.ChatModel == "" {
		config.NLP.ChatModel = "llama3"
	}
	if config.NLP.RequestTimeout == 0 {
		config.NLP.RequestTimeout = 30 * time.Second
	}

	if config.Pipeline.Concurrency == 0 {
		config.Pipeline.Concurrency = 4
	}
	if config.Pipeline.SummarySentences == 0 {
		config.Pipeline.SummarySentences = 3
	}

	if config.Search.TopK == 0 {
		config.Search.TopK = 5
	}
}

func mergeWithEnv(config *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		config.Redis.Password = pass
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
		config.Database.Driver = "postgres"
	}
	if key := os.Getenv("HF_API_KEY"); key != "" {
		config.NLP.APIKey = key
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.NLP.OllamaBaseURL = baseURL
	}

	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.Minio.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.Minio.SecretKey = secretKey
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Minio.Endpoint = endpoint
	}
	if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
		config.Storage.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY"); secretKey != "" {
		config.Storage.S3.SecretKey = secretKey
	}
}
