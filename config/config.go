package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"clover-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`

	// PostgreSQL
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"clover"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`

	// Redis (embedding cache)
	RedisHost     string        `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	EmbeddingTTL  time.Duration `env:"EMBEDDING_CACHE_TTL" env-default:"720h"`

	// OpenAI embeddings
	OpenAIAPIKey        string `env:"OPENAI_API_KEY" env-default:""`
	OpenAIBaseURL       string `env:"OPENAI_BASE_URL" env-default:""`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" env-default:"1536"`

	// Kafka Consumer (incoming customer submissions)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaInputTopic      string   `env:"KAFKA_INPUT_TOPIC" env-default:"incoming-customers"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"clover-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka Producer (match completion events)
	KafkaOutputTopic  string `env:"KAFKA_OUTPUT_TOPIC" env-default:"match-events"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Background worker
	WorkerEnabled      bool          `env:"WORKER_ENABLED" env-default:"true"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" env-default:"5s"`
	WorkerConcurrency  int           `env:"WORKER_CONCURRENCY" env-default:"4"`
	WorkerBatchSize    int           `env:"WORKER_BATCH_SIZE" env-default:"50"`

	// Matching thresholds and weights
	ExactCompanyWeight float64 `env:"MATCH_EXACT_COMPANY_WEIGHT" env-default:"0.4"`
	ExactEmailWeight   float64 `env:"MATCH_EXACT_EMAIL_WEIGHT" env-default:"0.4"`
	ExactPhoneWeight   float64 `env:"MATCH_EXACT_PHONE_WEIGHT" env-default:"0.2"`
	ExactMinScore      float64 `env:"MATCH_EXACT_MIN_SCORE" env-default:"0.4"`
	VectorThreshold    float64 `env:"MATCH_VECTOR_THRESHOLD" env-default:"0.7"`
	VectorLimit        int     `env:"MATCH_VECTOR_LIMIT" env-default:"5"`
	FuzzyThreshold     float64 `env:"MATCH_FUZZY_THRESHOLD" env-default:"0.8"`
	FuzzyLimit         int     `env:"MATCH_FUZZY_LIMIT" env-default:"10"`

	// Confidence tier boundaries
	TierExact          float64 `env:"MATCH_TIER_EXACT" env-default:"0.95"`
	TierHighConfidence float64 `env:"MATCH_TIER_HIGH_CONFIDENCE" env-default:"0.85"`
	TierPotential      float64 `env:"MATCH_TIER_POTENTIAL" env-default:"0.75"`

	// Business rule multipliers
	IndustryBoost       float64 `env:"MATCH_INDUSTRY_BOOST" env-default:"1.2"`
	CityBoost           float64 `env:"MATCH_CITY_BOOST" env-default:"1.1"`
	CountryPenalty      float64 `env:"MATCH_COUNTRY_PENALTY" env-default:"0.8"`
	RevenueBoost        float64 `env:"MATCH_REVENUE_BOOST" env-default:"1.1"`
	RevenueRatioMin     float64 `env:"MATCH_REVENUE_RATIO_MIN" env-default:"0.8"`
	RevenueBoostEnabled bool    `env:"MATCH_REVENUE_BOOST_ENABLED" env-default:"true"`
}
