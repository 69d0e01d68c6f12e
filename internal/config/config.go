package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークンの有効期限

	SeedCatalog bool // 起動時に商品を投入するか

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIImageModel string
	OpenAIImageSize  string
	OpenAITimeout    time.Duration

	NotifyBus       string // memory / redis / kafka
	NotifyQueueSize int
	NotifyWorkers   int

	RedisAddr     string
	RedisStream   string // 注文イベントのstream
	RedisGroup    string // consumer group（全レプリカで共有）
	RedisConsumer string // group内の自分の名前（既定はホスト名）

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	WhatsAppTo         string // 注文通知の宛先（店舗）
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioBaseURL      string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	ttlMin, err := atoiDefault("ACCESS_TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	openAITimeout, err := atoiDefault("OPENAI_TIMEOUT_SECONDS", 120)
	if err != nil {
		return Config{}, err
	}
	queueSize, err := atoiDefault("NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return Config{}, err
	}
	workers, err := atoiDefault("NOTIFY_WORKERS", 2)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: os.Getenv("FE_URL"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: time.Duration(ttlMin) * time.Minute,

		SeedCatalog: envBool("SEED_CATALOG", true),

		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIImageModel: getenv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		OpenAIImageSize:  getenv("OPENAI_IMAGE_SIZE", "1024x1024"),
		OpenAITimeout:    time.Duration(openAITimeout) * time.Second,

		NotifyBus:       strings.ToLower(getenv("NOTIFY_BUS", "memory")),
		NotifyQueueSize: queueSize,
		NotifyWorkers:   workers,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisStream:   getenv("REDIS_STREAM", "orders.created"),
		RedisGroup:    getenv("REDIS_GROUP", "printshop-notifier"),
		RedisConsumer: getenv("REDIS_CONSUMER", hostname()),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "orders.created"),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "printshop-notifier"),

		WhatsAppTo:         getenv("WHATSAPP_TO", "+237699651854"),
		TwilioAccountSID:   strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		TwilioAuthToken:    strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		TwilioWhatsAppFrom: strings.TrimSpace(os.Getenv("TWILIO_WHATSAPP_FROM")),
		TwilioBaseURL:      getenv("TWILIO_BASE_URL", "https://api.twilio.com/2010-04-01"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if ttlMin <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	switch cfg.NotifyBus {
	case "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required when NOTIFY_BUS=redis")
		}
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when NOTIFY_BUS=kafka")
		}
	default:
		return Config{}, fmt.Errorf("NOTIFY_BUS must be memory, redis or kafka")
	}
	if cfg.NotifyQueueSize <= 0 || cfg.NotifyWorkers <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_QUEUE_SIZE and NOTIFY_WORKERS must be positive")
	}

	return cfg, nil
}

// PostgresのDSN
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProd() bool {
	switch strings.ToLower(c.GoEnv) {
	case "prod", "production":
		return true
	}
	return false
}

// Twilioの認証情報が揃っているか
func (c Config) WhatsAppEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

func atoiDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "printshop"
	}
	return h
}

func splitList(v string) []string {
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
