package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/socialauth/pkg/logger"
)

const envPrefix = "AUTHCTL_"

// Keychain backends.
const (
	keychainSystem = "system"
	keychainMemory = "memory"
)

type config struct {
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	FacebookAppID      string        `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret  string        `env:"FACEBOOK_APP_SECRET"`
	KeychainPrefix     string        `env:"KEYCHAIN_SERVICE_PREFIX" envDefault:"dev.socialauth.authctl"`
	Keychain           string        `env:"KEYCHAIN" envDefault:"system"`
	DataDir            string        `env:"DATA_DIR" envDefault:".authctl"`
	RedisURL           string        `env:"REDIS_URL"`
	RedisKeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"authctl"`
	CallbackAddr       string        `env:"CALLBACK_ADDR" envDefault:"127.0.0.1:8765"`
	SignInTimeout      time.Duration `env:"SIGNIN_TIMEOUT" envDefault:"3m"`
	Log                logger.SentryConfig
}

var errUnknownKeychain = errors.New("authctl: unknown keychain backend")

// loadConfig reads envFile when it exists, then parses AUTHCTL_* variables.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, err
		}
	}

	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return config{}, err
	}
	if cfg.Keychain != keychainSystem && cfg.Keychain != keychainMemory {
		return config{}, errors.Join(errUnknownKeychain, errors.New(cfg.Keychain))
	}
	return cfg, nil
}

func (c config) redirectURL() string {
	return "http://" + c.CallbackAddr + callbackPath
}
