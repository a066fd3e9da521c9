package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/socialauth"
	"github.com/dmitrymomot/socialauth/pkg/federated"
	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/manual"
	"github.com/dmitrymomot/socialauth/pkg/redis"
	"github.com/dmitrymomot/socialauth/pkg/session"
)

// app is the wired coordinator and the resources it holds.
type app struct {
	cfg      config
	log      *slog.Logger
	auth     *socialauth.Coordinator
	redis    goredis.UniversalClient
	accounts *manual.FileDirectory
	store    string
	closers  []func(context.Context) error
}

func newApp(ctx context.Context, cfg config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	kc := keychain.Keychain(keychain.NewSystem())
	if cfg.Keychain == keychainMemory {
		kc = keychain.NewMemory()
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, errors.Join(a.close(ctx), err)
	}

	a.accounts, err = manual.OpenFileDirectory(filepath.Join(cfg.DataDir, "accounts.yaml"))
	if err != nil {
		return nil, errors.Join(a.close(ctx), err)
	}

	opts := []socialauth.Option{
		socialauth.WithLogger(log),
		socialauth.WithCollectSetupErrors(),
		socialauth.WithSignUpProvider(socialauth.KindManual, manual.New(a.accounts, manual.WithKeychain(kc))),
	}
	if cfg.GoogleClientID != "" {
		opts = append(opts, socialauth.WithProvider(socialauth.KindGoogle, federated.NewGoogle(
			federated.WithKeychain(kc),
			federated.WithClientSecret(cfg.GoogleClientSecret),
		)))
	}
	if cfg.FacebookAppID != "" {
		opts = append(opts, socialauth.WithProvider(socialauth.KindFacebook, federated.NewFacebook(
			federated.WithKeychain(kc),
			federated.WithClientSecret(cfg.FacebookAppSecret),
		)))
	}

	a.auth, err = socialauth.New(ctx, store, opts...)
	if err != nil {
		return nil, errors.Join(a.close(ctx), err)
	}

	err = a.auth.Setup(socialauth.SetupConfig{
		GoogleClientID:        cfg.GoogleClientID,
		FacebookAppID:         cfg.FacebookAppID,
		RedirectURL:           cfg.redirectURL(),
		KeychainServicePrefix: cfg.KeychainPrefix,
	})
	if err != nil {
		return nil, errors.Join(a.close(ctx), err)
	}
	return a, nil
}

// openStore uses Redis when a URL is configured and a preferences file otherwise.
func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if a.cfg.RedisURL == "" {
		path := filepath.Join(a.cfg.DataDir, "preferences.json")
		a.store = "file:" + path
		return session.NewFileStore(path), nil
	}

	client, err := redis.Open(ctx, a.cfg.RedisURL, redis.WithLogger(a.log), redis.WithClientName("authctl"))
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.store = "redis"
	a.closers = append(a.closers, redis.Shutdown(client))
	return session.NewRedisStore(client, session.WithKeyPrefix(a.cfg.RedisKeyPrefix)), nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
