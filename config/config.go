package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config carries the runtime configuration resolved from the
// environment once at startup. The moderation threshold is injected
// into the moderation service from here; nothing inside the engine
// reads the environment.
type Config struct {
	// SpamThreshold is the distinct-reporter count at which an issue is
	// automatically hidden.
	SpamThreshold int64

	// Media store settings (S3-compatible).
	MediaEndpoint  string
	MediaAccessKey string
	MediaSecretKey string
	MediaBucket    string
	MediaPublicURL string
	MediaUseSSL    bool

	// GeocoderURL is the base URL of the Nominatim-compatible reverse
	// geocoding service. Empty disables address enrichment.
	GeocoderURL string

	// Per-user daily rate limits.
	CreateIssueLimit int
	SpamReportLimit  int
}

// Load resolves the configuration, applying defaults for everything
// optional.
func Load() Config {
	return Config{
		SpamThreshold:    envInt64("SPAM_THRESHOLD", 3),
		MediaEndpoint:    os.Getenv("MEDIA_ENDPOINT"),
		MediaAccessKey:   os.Getenv("MEDIA_ACCESS_KEY"),
		MediaSecretKey:   os.Getenv("MEDIA_SECRET_KEY"),
		MediaBucket:      envString("MEDIA_BUCKET", "civic-track-images"),
		MediaPublicURL:   os.Getenv("MEDIA_PUBLIC_URL"),
		MediaUseSSL:      os.Getenv("MEDIA_USE_SSL") == "true",
		GeocoderURL:      os.Getenv("GEOCODER_URL"),
		CreateIssueLimit: envInt("CREATE_ISSUE_DAILY_LIMIT", 10),
		SpamReportLimit:  envInt("SPAM_REPORT_DAILY_LIMIT", 20),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("Invalid %s value %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logrus.Warnf("Invalid %s value %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
