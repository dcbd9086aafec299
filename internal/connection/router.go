package connection

import "slices"

// AppRouter permits migrating a module on a connection when the
// connection's Apps list is empty or contains the module label.
type AppRouter struct {
	allowed map[string][]string
}

// NewAppRouter builds a router from connection configurations.
func NewAppRouter(configs map[string]Config) *AppRouter {
	r := &AppRouter{allowed: make(map[string][]string)}
	for alias, cfg := range configs {
		if len(cfg.Apps) > 0 {
			r.allowed[alias] = slices.Clone(cfg.Apps)
		}
	}
	return r
}

// AllowMigrate reports whether moduleLabel may be migrated on alias.
func (r *AppRouter) AllowMigrate(alias, moduleLabel string) bool {
	apps, ok := r.allowed[alias]
	if !ok {
		return true
	}
	return slices.Contains(apps, moduleLabel)
}
