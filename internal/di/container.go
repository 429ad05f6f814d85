// Package di provides dependency injection configuration for the NextRead
// client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/nextreadapp/nextread-client/internal/config"
	"github.com/nextreadapp/nextread-client/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Flag overrides from the CLI are registered as a value so ProvideConfig can
// fold them into the precedence chain.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, flags)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideTokenStore)
	do.Provide(injector, providers.ProvideCache)

	// Backend access
	do.Provide(injector, providers.ProvideAPIClient)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideSurveyService)
	do.Provide(injector, providers.ProvideUserBookService)
	do.Provide(injector, providers.ProvideCatalogService)

	// Session
	do.Provide(injector, providers.ProvideSessionManager)

	// UI
	do.Provide(injector, providers.ProvideApp)

	return injector
}
