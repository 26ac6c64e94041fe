package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	JWTSecret string
	JWTTTL    time.Duration

	MaxUploadSize       int64
	MaxImageDimension   int
	MaxImagePixels      int
	AnonConversionLimit int
	TrustProxyHeaders   bool
	StatusCacheTTL      time.Duration
	DownloadURLTTL      time.Duration

	WorkerConcurrency int
	CleanupCron       string
	CleanupMaxAge     time.Duration

	PasswordResetTTL time.Duration
	FrontendURL      string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

var required = []string{
	"MARIADB_DSN",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
	"JWT_SECRET",
}

func setDefaults() {
	viper.SetDefault("MARIADB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("MARIADB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("MARIADB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("MINIO_BUCKET", "opustools")
	viper.SetDefault("JWT_TTL", 86400)
	viper.SetDefault("MAX_UPLOAD_SIZE", 10<<20)
	viper.SetDefault("MAX_IMAGE_DIMENSION", 10000)
	viper.SetDefault("MAX_IMAGE_PIXELS", 89478485)
	viper.SetDefault("ANON_CONVERSION_LIMIT", 2)
	viper.SetDefault("TRUST_PROXY_HEADERS", false)
	viper.SetDefault("STATUS_CACHE_TTL", 300)
	viper.SetDefault("DOWNLOAD_URL_TTL", 3600)
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("CLEANUP_CRON", "0 0 * * *")
	viper.SetDefault("CLEANUP_MAX_AGE", 86400)
	viper.SetDefault("PASSWORD_RESET_TTL", 3600)
	viper.SetDefault("FRONTEND_URL", "https://opustools.xyz")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_FROM", "no-reply@opustools.xyz")
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.Reset()
	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	setDefaults()

	for _, key := range required {
		if viper.GetString(key) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	s := &Settings{
		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONNS"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: seconds("MARIADB_CONN_MAX_LIFETIME"),
		ServerPort:      viper.GetInt("SERVER_PORT"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		MinioBucket:    viper.GetString("MINIO_BUCKET"),

		JWTSecret: viper.GetString("JWT_SECRET"),
		JWTTTL:    seconds("JWT_TTL"),

		MaxUploadSize:       viper.GetInt64("MAX_UPLOAD_SIZE"),
		MaxImageDimension:   viper.GetInt("MAX_IMAGE_DIMENSION"),
		MaxImagePixels:      viper.GetInt("MAX_IMAGE_PIXELS"),
		AnonConversionLimit: viper.GetInt("ANON_CONVERSION_LIMIT"),
		TrustProxyHeaders:   viper.GetBool("TRUST_PROXY_HEADERS"),
		StatusCacheTTL:      seconds("STATUS_CACHE_TTL"),
		DownloadURLTTL:      seconds("DOWNLOAD_URL_TTL"),

		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),
		CleanupCron:       viper.GetString("CLEANUP_CRON"),
		CleanupMaxAge:     seconds("CLEANUP_MAX_AGE"),

		PasswordResetTTL: seconds("PASSWORD_RESET_TTL"),
		FrontendURL:      viper.GetString("FRONTEND_URL"),

		SMTPHost:     viper.GetString("SMTP_HOST"),
		SMTPPort:     viper.GetInt("SMTP_PORT"),
		SMTPUsername: viper.GetString("SMTP_USERNAME"),
		SMTPPassword: viper.GetString("SMTP_PASSWORD"),
		MailFrom:     viper.GetString("MAIL_FROM"),
	}

	if s.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if s.MaxImageDimension <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_DIMENSION must be positive")
	}
	if s.MaxImagePixels <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be positive")
	}
	if s.WorkerConcurrency <= 0 {
		return nil, fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if len(s.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return s, nil
}

func seconds(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}
