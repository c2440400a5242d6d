package config

import (
	"fmt"
	"net/url"
)

// ValidationError names the config field that failed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the loaded configuration and returns every problem found,
// not just the first one.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}
	if c.Server.MaxUploadSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.max_upload_size_mb",
			Message: "max upload size must be positive",
		})
	}

	if c.Redis.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "redis.addr",
			Message: "redis address is required",
		})
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.Local.Dir == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.local.dir",
				Message: "local storage directory is required",
			})
		}
	case "minio":
		if c.Storage.Minio.Endpoint == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.minio.endpoint",
				Message: "minio endpoint is required",
			})
		}
		if c.Storage.Minio.BucketName == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.minio.bucket_name",
				Message: "minio bucket name is required",
			})
		}
	case "s3":
		if c.Storage.S3.BucketName == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.s3.bucket_name",
				Message: "s3 bucket name is required",
			})
		}
		if c.Storage.S3.Region == "" {
			errors = append(errors, ValidationError{
				Field:   "storage.s3.region",
				Message: "s3 region is required",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "storage.type",
			Message: fmt.Sprintf("unsupported storage type: %s", c.Storage.Type),
		})
	}

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "database URL is required for the postgres driver",
			})
		} else if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unsupported database driver: %s", c.Database.Driver),
		})
	}

	if _, err := url.Parse(c.NLP.OllamaBaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "nlp.ollama_base_url",
			Message: "invalid Ollama base URL",
		})
	}
	if c.NLP.EmbedDimension < 0 {
		errors = append(errors, ValidationError{
			Field:   "nlp.embed_dimension",
			Message: "embed dimension must not be negative",
		})
	}
	if c.NLP.RequestTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "nlp.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	if c.Pipeline.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.concurrency",
			Message: "concurrency must be positive",
		})
	}
	if c.Pipeline.SummarySentences < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.summary_sentences",
			Message: "summary_sentences must be positive",
		})
	}

	if c.Search.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "search.top_k",
			Message: "top_k must be positive",
		})
	}

	return errors
}
