// Package providers contains dependency injection providers for the
// NextRead client.
package providers

import (
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/nextreadapp/nextread-client/internal/config"
	"github.com/nextreadapp/nextread-client/internal/logger"
	"github.com/nextreadapp/nextread-client/internal/store"
	"github.com/nextreadapp/nextread-client/internal/token"
)

// ProvideConfig provides the application configuration. The CLI registers
// its parsed flag overrides as a config.Flags value before invoking this.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags, err := do.Invoke[config.Flags](i)
	if err != nil {
		flags = config.Flags{}
	}
	return config.Load(flags)
}

// ProvideLogger provides the structured logger. Output goes to a file under
// the data directory; the terminal belongs to the UI.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath()), 0o755); err != nil {
		return logger.Discard(), nil
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logger.Discard(), nil
	}

	log := logger.New(logger.Config{
		Writer:      f,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})

	log.Info("starting NextRead client",
		"environment", cfg.App.Environment,
		"api_url", cfg.API.BaseURL,
		"data_path", cfg.Data.Path,
	)

	return log, nil
}

// ProvideTokenStore provides the on-disk bearer token store.
func ProvideTokenStore(i do.Injector) (*token.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return token.NewStore(cfg.TokenPath()), nil
}

// ProvideCache provides the local library cache.
func ProvideCache(i do.Injector) (*store.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return store.Open(cfg.CachePath(), log.Logger)
}
