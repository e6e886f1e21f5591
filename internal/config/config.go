package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 运行时配置，来自 .env 与进程环境变量
type Config struct {
	Port        string
	Environment string
	SiteURL     string

	DatabaseURL string

	SessionSecret  string
	SessionName    string
	SessionBackend string // memory | redis
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MailProvider string // log | brevo | ses | smtp
	MailFrom     string
	MailFromName string
	BrevoAPIKey  string
	AWSRegion    string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	MediaBackend   string // local | s3
	UploadDir      string
	MediaURLPrefix string
	S3Bucket       string
	S3BaseURL      string
	MaxUploadMB    int

	RequireIDVerification bool
	CORSOrigins           []string

	LogLevel  string
	LogFile   string
	SentryDSN string
}

// Load 读取 .env 后从环境变量构建配置
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=communityhub port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("SESSION_NAME", "communityhub_session")
	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_FROM", "no-reply@communityhub.local")
	v.SetDefault("MAIL_FROM_NAME", "CommunityHub")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MEDIA_URL_PREFIX", "/uploads")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("REQUIRE_ID_VERIFICATION", false)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "server.log")

	siteURL := strings.TrimSuffix(v.GetString("SITE_URL"), "/")
	redirect := v.GetString("GOOGLE_REDIRECT_URL")
	if redirect == "" {
		redirect = siteURL + "/auth/google/callback"
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		SiteURL:     siteURL,

		DatabaseURL: v.GetString("DATABASE_URL"),

		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionName:    v.GetString("SESSION_NAME"),
		SessionBackend: strings.ToLower(v.GetString("SESSION_BACKEND")),
		SessionTTL:     v.GetDuration("SESSION_TTL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		MailProvider: strings.ToLower(v.GetString("MAIL_PROVIDER")),
		MailFrom:     v.GetString("MAIL_FROM"),
		MailFromName: v.GetString("MAIL_FROM_NAME"),
		BrevoAPIKey:  v.GetString("BREVO_API_KEY"),
		AWSRegion:    v.GetString("AWS_REGION"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetString("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPass:     v.GetString("SMTP_PASS"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  redirect,

		MediaBackend:   strings.ToLower(v.GetString("MEDIA_BACKEND")),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MediaURLPrefix: strings.TrimSuffix(v.GetString("MEDIA_URL_PREFIX"), "/"),
		S3Bucket:       v.GetString("S3_BUCKET"),
		S3BaseURL:      v.GetString("S3_BASE_URL"),
		MaxUploadMB:    v.GetInt("MAX_UPLOAD_MB"),

		RequireIDVerification: v.GetBool("REQUIRE_ID_VERIFICATION"),
		CORSOrigins:           splitList(v.GetString("CORS_ORIGINS")),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFile:   v.GetString("LOG_FILE"),
		SentryDSN: v.GetString("SENTRY_DSN"),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
