package api

import (
	"net/http"
	"strconv"

	"github.com/tmarek/blockpress-backend/database"
	"github.com/tmarek/blockpress-backend/registry"
	"github.com/tmarek/blockpress-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, generator *registry.SlugGenerator, resolver *registry.SlugResolver, recorder *services.AnalyticsRecorder) *routeHandlers {
	return &routeHandlers{
		blockHandler:   newBlockHandler(db, generator),
		composeHandler: newComposeHandler(db),
		resolveHandler: newResolveHandler(db, resolver, recorder),
	}
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
