package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Notification drivers accepted by NOTIFY_DRIVER.
const (
	NotifySMTP = "smtp"
	NotifySNS  = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	AppName   string
	ClientURL string // base URL used in verification links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	AvatarMaxBytes int64

	JWTPrivateKeyPath       string
	JWTPublicKeyPath        string
	JWTExpiry               time.Duration
	VerificationTokenExpiry time.Duration

	OTPTTL     time.Duration
	BcryptCost int

	NotifyDriver string
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
	SNSTopicARN  string

	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64
	RateLimitBurst int
	TrustedProxies []string // proxies whose X-Forwarded-For is believed; empty trusts none
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts string
	OtpCodes string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		AppName:   getEnv("APP_NAME", "Ring"),
		ClientURL: strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts: getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			OtpCodes: getEnv("DYNAMO_TABLE_OTP_CODES", "otp_codes"),
		},
		S3BucketName:   getEnv("S3_BUCKET_NAME", "go-account-avatars"),
		AvatarMaxBytes: int64(getEnvInt("AVATAR_MAX_BYTES", 5<<20)),

		JWTPrivateKeyPath:       getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:        getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:               time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,
		VerificationTokenExpiry: time.Duration(getEnvInt("VERIFICATION_TOKEN_EXPIRY_HOURS", 24)) * time.Hour,

		OTPTTL:     time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		NotifyDriver: strings.ToLower(getEnv("NOTIFY_DRIVER", NotifySMTP)),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
