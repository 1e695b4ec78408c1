package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr string
	APIBaseURL string
	APITimeout time.Duration
	LogLevel   string
	DevMode    bool

	// session cookie keys, base64; required only by serve
	SessionHashKey  []byte
	SessionBlockKey []byte
}

// Load reads SLOTBOOK_* environment variables with defaults. Session
// keys are decoded when present; serve insists on them via
// RequireSessionKeys, the one-shot commands don't need them.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("slotbook")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("api_url", "http://localhost:5000/api")
	v.SetDefault("api_timeout_seconds", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("dev_mode", false)

	cfg := Config{
		ListenAddr: v.GetString("listen_addr"),
		APIBaseURL: strings.TrimRight(v.GetString("api_url"), "/"),
		APITimeout: time.Duration(v.GetInt("api_timeout_seconds")) * time.Second,
		LogLevel:   v.GetString("log_level"),
		DevMode:    v.GetBool("dev_mode"),
	}
	if cfg.APITimeout < time.Second {
		return Config{}, fmt.Errorf("SLOTBOOK_API_TIMEOUT_SECONDS must be >= 1")
	}

	var err error
	if s := v.GetString("session_hash_key"); s != "" {
		if cfg.SessionHashKey, err = decodeB64(s); err != nil {
			return Config{}, fmt.Errorf("SLOTBOOK_SESSION_HASH_KEY: %w", err)
		}
	}
	if s := v.GetString("session_block_key"); s != "" {
		if cfg.SessionBlockKey, err = decodeB64(s); err != nil {
			return Config{}, fmt.Errorf("SLOTBOOK_SESSION_BLOCK_KEY: %w", err)
		}
	}
	return cfg, nil
}

func (c Config) RequireSessionKeys() error {
	if len(c.SessionHashKey) == 0 || len(c.SessionBlockKey) == 0 {
		return fmt.Errorf("SLOTBOOK_SESSION_HASH_KEY and SLOTBOOK_SESSION_BLOCK_KEY are required (base64, see `slotbook keys`)")
	}
	return nil
}

func decodeB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
