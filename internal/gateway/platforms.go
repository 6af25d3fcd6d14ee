// ABOUTME: Builds the per-platform tenant caches and registers the platform tool packs
// ABOUTME: Tenants come from config; implicit tenants come from the environment when enabled

package gateway

import (
	"fmt"
	"log/slog"

	"github.com/2389/herald-gateway/internal/config"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/platform/facebook"
	"github.com/2389/herald-gateway/internal/platform/instagram"
	"github.com/2389/herald-gateway/internal/platform/linkedin"
	"github.com/2389/herald-gateway/internal/platform/matrix"
	"github.com/2389/herald-gateway/internal/platform/twitter"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// tenantDirectory is the read-only view of a tenant cache.
type tenantDirectory interface {
	Platform() string
	Tenants() []string
	Len() int
}

// envSource returns the environment source for a platform when implicit tenants are enabled.
func envSource[C tenants.Credentials](enabled bool, build func(tenants.LookupFunc) tenants.Source[C]) tenants.Source[C] {
	if !enabled {
		return nil
	}
	return build(tenants.OSLookup)
}

// registerTenants adds the configured tenants to a cache.
func registerTenants[T any, C tenants.Credentials, H any](cache *tenants.Cache[C, H], list []T, convert func(T) (string, C)) error {
	for _, entry := range list {
		id, creds := convert(entry)
		if err := cache.Register(id, creds); err != nil {
			return fmt.Errorf("registering %s tenant %q: %w", cache.Platform(), id, err)
		}
	}
	return nil
}

// registerPlatforms builds a tenant cache per enabled platform and registers its pack.
func (g *Gateway) registerPlatforms(logger *slog.Logger) error {
	cfg := g.config
	httpClient := platform.NewHTTPClient(cfg.Platforms.HTTPTimeout)
	implicit := cfg.Tenants.ImplicitEnv

	if cfg.PlatformEnabled(twitter.Platform) {
		clients, err := twitter.NewCache(twitter.NewFactory(httpClient, cfg.Platforms.TwitterBaseURL), envSource(implicit, twitter.EnvSource), logger)
		if err != nil {
			return err
		}
		err = registerTenants(clients, cfg.Tenants.Twitter, func(t config.TwitterTenant) (string, twitter.Credentials) {
			return t.ID, twitter.Credentials{
				BearerToken:  t.BearerToken,
				APIKey:       t.APIKey,
				APISecret:    t.APISecret,
				AccessToken:  t.AccessToken,
				AccessSecret: t.AccessSecret,
			}
		})
		if err != nil {
			return err
		}
		if err := g.addPlatform(clients, twitter.Pack(twitter.Deps{Validator: g.validator, Clients: clients})); err != nil {
			return err
		}
	}

	if cfg.PlatformEnabled(facebook.Platform) {
		clients, err := facebook.NewCache(facebook.NewFactory(httpClient, cfg.Platforms.GraphBaseURL), envSource(implicit, facebook.EnvSource), logger)
		if err != nil {
			return err
		}
		err = registerTenants(clients, cfg.Tenants.Facebook, func(t config.FacebookTenant) (string, facebook.Credentials) {
			return t.ID, facebook.Credentials{AccessToken: t.AccessToken, PageID: t.PageID}
		})
		if err != nil {
			return err
		}
		if err := g.addPlatform(clients, facebook.Pack(facebook.Deps{Validator: g.validator, Clients: clients})); err != nil {
			return err
		}
	}

	if cfg.PlatformEnabled(instagram.Platform) {
		clients, err := instagram.NewCache(instagram.NewFactory(httpClient, cfg.Platforms.GraphBaseURL), envSource(implicit, instagram.EnvSource), logger)
		if err != nil {
			return err
		}
		err = registerTenants(clients, cfg.Tenants.Instagram, func(t config.InstagramTenant) (string, instagram.Credentials) {
			return t.ID, instagram.Credentials{AccessToken: t.AccessToken, BusinessAccountID: t.BusinessAccountID}
		})
		if err != nil {
			return err
		}
		if err := g.addPlatform(clients, instagram.Pack(instagram.Deps{Validator: g.validator, Clients: clients})); err != nil {
			return err
		}
	}

	if cfg.PlatformEnabled(linkedin.Platform) {
		clients, err := linkedin.NewCache(linkedin.NewFactory(httpClient, cfg.Platforms.LinkedInBaseURL), envSource(implicit, linkedin.EnvSource), logger)
		if err != nil {
			return err
		}
		err = registerTenants(clients, cfg.Tenants.LinkedIn, func(t config.LinkedInTenant) (string, linkedin.Credentials) {
			return t.ID, linkedin.Credentials{AccessToken: t.AccessToken, AuthorURN: t.AuthorURN}
		})
		if err != nil {
			return err
		}
		if err := g.addPlatform(clients, linkedin.Pack(linkedin.Deps{Validator: g.validator, Clients: clients})); err != nil {
			return err
		}
	}

	if cfg.PlatformEnabled(matrix.Platform) {
		clients, err := matrix.NewCache(matrix.NewFactory(httpClient), envSource(implicit, matrix.EnvSource), logger)
		if err != nil {
			return err
		}
		err = registerTenants(clients, cfg.Tenants.Matrix, func(t config.MatrixTenant) (string, matrix.Credentials) {
			return t.ID, matrix.Credentials{
				Homeserver:  t.Homeserver,
				UserID:      t.UserID,
				AccessToken: t.AccessToken,
				DefaultRoom: t.DefaultRoom,
			}
		})
		if err != nil {
			return err
		}
		if err := g.addPlatform(clients, matrix.Pack(matrix.Deps{Validator: g.validator, Clients: clients})); err != nil {
			return err
		}
	}

	return nil
}

// addPlatform registers a pack and tracks its tenant cache.
func (g *Gateway) addPlatform(dir tenantDirectory, pack *tools.Pack) error {
	if err := g.registry.RegisterPack(pack); err != nil {
		return fmt.Errorf("registering %s tools: %w", dir.Platform(), err)
	}
	if g.metrics != nil {
		if err := g.metrics.TrackTenants(dir.Platform(), dir.Len); err != nil {
			return fmt.Errorf("tracking %s tenants: %w", dir.Platform(), err)
		}
	}
	g.directories = append(g.directories, dir)
	g.logger.Info("platform enabled", "platform", dir.Platform(), "tools", len(pack.Tools), "tenants", dir.Len())
	return nil
}

// tenantsByPlatform returns the registered tenant ids keyed by platform.
func (g *Gateway) tenantsByPlatform() map[string][]string {
	out := make(map[string][]string, len(g.directories))
	for _, d := range g.directories {
		out[d.Platform()] = d.Tenants()
	}
	return out
}
