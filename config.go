package dishmatch

import "time"

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=2048"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type EngineConfig struct {
	OracleProvider     string        `env:"ORACLE_PROVIDER,default=bedrock"`
	OracleTimeout      time.Duration `env:"ORACLE_TIMEOUT,default=25s"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	VocabularyPath     string        `env:"VOCABULARY_PATH"`
	MaxResults         int           `env:"MAX_RESULTS,default=6"`
	RunLogDir          string        `env:"RUN_LOG_DIR,default=./logs"`
}

type CatalogConfig struct {
	Source    string `env:"CATALOG_SOURCE,default=file"`
	Path      string `env:"CATALOG_PATH,default=artifacts/catalog.json"`
	S3Bucket  string `env:"CATALOG_S3_BUCKET"`
	S3Key     string `env:"CATALOG_S3_KEY"`
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisKey  string `env:"CATALOG_REDIS_KEY,default=catalog:items"`
}

type BreakerConfig struct {
	Enabled          bool          `env:"BREAKER_ENABLED,default=true"`
	MinRequests      uint32        `env:"BREAKER_MIN_REQUESTS,default=5"`
	FailureRatio     float64       `env:"BREAKER_FAILURE_RATIO,default=0.6"`
	OpenTimeout      time.Duration `env:"BREAKER_OPEN_TIMEOUT,default=1m"`
	MeasureInterval  time.Duration `env:"BREAKER_INTERVAL,default=1m"`
	HalfOpenRequests uint32        `env:"BREAKER_HALF_OPEN_REQUESTS,default=1"`
}

type SlackConfig struct {
	WebhookURL string `env:"SLACK_WEBHOOK_URL"`
	Channel    string `env:"SLACK_CHANNEL,default=#food-recs"`
}
