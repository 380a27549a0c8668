package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string
	ReceiptsDir string
	PreviewsDir string
	LabelsDir   string
	OutputDir   string
	RawMailDir  string
	InboxDir    string

	UserID string

	GeminiAPIKey string
	GeminiModel  string

	PostalAPIBaseURL string
	PostalRateLimit  int
	PostalTimeoutMs  int
	PhoneCountryCode string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	IntakeMailProvider string
	IntakeMailLabel    string
	IntakeIntervalSec  int
	IntakeFetchMax     int
	IntakeAutoCommit   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		ReceiptsDir: getEnv("RECEIPTS_DIR", filepath.Join(cwd, "data", "receipts")),
		PreviewsDir: getEnv("PREVIEWS_DIR", filepath.Join(cwd, "data", "previews")),
		LabelsDir:   getEnv("LABELS_DIR", filepath.Join(cwd, "out", "labels")),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RawMailDir:  getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		InboxDir:    getEnv("INBOX_DIR", filepath.Join(cwd, "inbox")),

		UserID: getEnv("USER_ID", "local"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-flash-latest"),

		PostalAPIBaseURL: getEnv("POSTAL_API_BASE_URL", "https://api.postalpincode.in"),
		PostalRateLimit:  getEnvInt("POSTAL_RATE_LIMIT_RPS", 3),
		PostalTimeoutMs:  getEnvInt("POSTAL_TIMEOUT_MS", 10000),
		PhoneCountryCode: getEnv("PHONE_COUNTRY_CODE", "91"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		IntakeMailProvider: getEnv("INTAKE_MAIL_PROVIDER", ""),
		IntakeMailLabel:    getEnv("INTAKE_MAIL_LABEL", "INBOX"),
		IntakeIntervalSec:  getEnvInt("INTAKE_INTERVAL_SEC", 30),
		IntakeFetchMax:     getEnvInt("INTAKE_FETCH_MAX", 20),
		IntakeAutoCommit:   getEnvBool("INTAKE_AUTO_COMMIT", false),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
