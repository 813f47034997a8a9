package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	LogLevel  string
	LogFormat string

	ReferenceSource       string
	ReferenceCacheTTL     time.Duration
	ReferenceTimeoutMs    int
	ReferenceRateLimitRPS int

	PriceTableURL       string
	TranslationTableURL string
	MaterialTableURL    string

	SheetsSpreadsheetID    string
	SheetsCredentialsFile  string
	SheetsAPIKey           string
	SheetsPriceRange       string
	SheetsTranslationRange string
	SheetsMaterialRange    string

	ReferenceXLSXPath    string
	XLSXPriceSheet       string
	XLSXTranslationSheet string
	XLSXMaterialSheet    string

	DefaultWashingCode string
	BatchOffsetDays    int

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

	MailListenerProvider     string
	MailListenerLabel        string
	MailListenerIntervalSec  int
	MailListenerFetchMax     int
	MailListenerProcessBatch int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ReferenceSource:       strings.ToLower(getEnv("REFERENCE_SOURCE", "http")),
		ReferenceCacheTTL:     getEnvDuration("REFERENCE_CACHE_TTL", 10*time.Minute),
		ReferenceTimeoutMs:    getEnvInt("REFERENCE_TIMEOUT_MS", 30000),
		ReferenceRateLimitRPS: getEnvInt("REFERENCE_RATE_LIMIT_RPS", 5),

		PriceTableURL:       getEnv("PRICE_TABLE_URL", ""),
		TranslationTableURL: getEnv("TRANSLATION_TABLE_URL", ""),
		MaterialTableURL:    getEnv("MATERIAL_TABLE_URL", ""),

		SheetsSpreadsheetID:    getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsFile:  getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SheetsAPIKey:           getEnv("SHEETS_API_KEY", ""),
		SheetsPriceRange:       getEnv("SHEETS_PRICE_RANGE", "Prices"),
		SheetsTranslationRange: getEnv("SHEETS_TRANSLATION_RANGE", "SS26 Product_Name"),
		SheetsMaterialRange:    getEnv("SHEETS_MATERIAL_RANGE", "Materials"),

		ReferenceXLSXPath:    getEnv("REFERENCE_XLSX_PATH", ""),
		XLSXPriceSheet:       getEnv("XLSX_PRICE_SHEET", "Prices"),
		XLSXTranslationSheet: getEnv("XLSX_TRANSLATION_SHEET", "Product_Name"),
		XLSXMaterialSheet:    getEnv("XLSX_MATERIAL_SHEET", "Materials"),

		DefaultWashingCode: getEnv("DEFAULT_WASHING_CODE", "9"),
		BatchOffsetDays:    getEnvInt("BATCH_OFFSET_DAYS", 20),

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

		MailListenerProvider:     getEnv("MAIL_LISTENER_PROVIDER", "gmail"),
		MailListenerLabel:        getEnv("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec:  getEnvInt("MAIL_LISTENER_INTERVAL_SEC", 60),
		MailListenerFetchMax:     getEnvInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerProcessBatch: getEnvInt("MAIL_LISTENER_PROCESS_BATCH", 20),
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
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
