package server

import (
	"fmt"
	"net/http"

	"github.com/Adams99Abubakry/team-nexus/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
)

const sessionMaxAge = 86400 * 7 // 7 days

// NewSessionStore returns a Redis backed store when Redis is configured and
// a signed cookie store otherwise.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.Redis.Enabled() {
		rs, err := redisStore.NewStore(
			cfg.Redis.PoolSize,
			"tcp",
			cfg.Redis.Addr(),
			"", // username (empty for default user)
			cfg.Redis.Password,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessionOptions(cfg))
	return store, nil
}

// sessionOptions keeps the cookie Lax in development. In production it is
// sent cross-site so the invitation endpoints work from other origins,
// which browsers only allow on secure cookies.
func sessionOptions(cfg *config.Config) sessions.Options {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.IsProduction() {
		options.Secure = true
		options.SameSite = http.SameSiteNoneMode
	}
	return options
}
