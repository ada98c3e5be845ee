package utils

import (
	"os"
	"strings"
)

// Environment variables read as fallbacks when the config file leaves a
// value empty.
const (
	EnvClientID     = "CAMDRAM_CLIENT_ID"
	EnvClientSecret = "CAMDRAM_CLIENT_SECRET"
	EnvDBPath       = "CAMDRAM_DB_PATH"
	EnvAPIBind      = "CAMDRAM_API_BIND"
)

// Env returns the trimmed value of key, or def when it is unset or blank.
func Env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Fill sets *dst from the environment when it is empty.
func Fill(dst *string, key string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = Env(key, *dst)
	}
}
