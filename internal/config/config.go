package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	CookieName  string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string

	// QuickBooks Online
	QBOClientID        string
	QBOClientSecret    string
	QBORedirectURL     string
	QBOWebhookVerifier string
	QBOAPIBaseURL      string
	QBOMinorVersion    string
	// Seconds to wait before resolving a Create notification; QBO reads are
	// eventually consistent right after entity creation.
	QBOCreateWaitSeconds int

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Object storage (S3)
	S3Bucket  string
	S3Region  string
	S3BaseURL string

	// Reporting warehouse mirror
	MirrorPostgresDSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		CookieName:  getEnv("AUTH_COOKIE_NAME", "devco_session"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "devco-erp"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "devco-erp"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173"),

		QBOClientID:          getEnv("QBO_CLIENT_ID", ""),
		QBOClientSecret:      getEnv("QBO_CLIENT_SECRET", ""),
		QBORedirectURL:       getEnv("QBO_REDIRECT_URL", "http://localhost:8080/api/quickbooks/callback"),
		QBOWebhookVerifier:   getEnv("QBO_WEBHOOK_VERIFIER", ""),
		QBOAPIBaseURL:        getEnv("QBO_API_BASE_URL", "https://sandbox-quickbooks.api.intuit.com"),
		QBOMinorVersion:      getEnv("QBO_MINOR_VERSION", "65"),
		QBOCreateWaitSeconds: getEnvInt("QBO_CREATE_WAIT_SECONDS", 5),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@devco.local"),

		S3Bucket:  getEnv("S3_BUCKET", ""),
		S3Region:  getEnv("S3_REGION", "us-east-1"),
		S3BaseURL: getEnv("S3_BASE_URL", ""),

		MirrorPostgresDSN: getEnv("MIRROR_POSTGRES_DSN", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
