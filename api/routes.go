package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes wires the public resolution surface and the authenticated
// admin surface. Specific routes (index, tree, admin) are all reserved
// slugs, so the catch-all slug route can never shadow them.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Public resolution routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/", handlers.resolveHandler.resolveLanding())
		r.Get("/index", handlers.resolveHandler.listIndex())
		r.Get("/tree/{slug}", handlers.resolveHandler.getTree())
		r.Get("/{slug}", handlers.resolveHandler.resolveSlug())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		// Block CRUD
		r.Post("/admin/block", handlers.blockHandler.createBlock())
		r.Get("/admin/blocks", handlers.blockHandler.listBlocks())
		r.Get("/admin/block/{blockID}", handlers.blockHandler.getBlock())
		r.Put("/admin/block/{blockID}", handlers.blockHandler.updateBlock())
		r.Delete("/admin/block/{blockID}", handlers.blockHandler.deactivateBlock())
		r.Delete("/admin/block/{blockID}/purge", handlers.blockHandler.purgeBlock())
		r.Post("/admin/block/{blockID}/publish", handlers.blockHandler.publishBlock())
		r.Post("/admin/block/{blockID}/landing", handlers.blockHandler.setLandingBlock())
		r.Get("/admin/block/{blockID}/stats", handlers.blockHandler.blockStats())
		r.Get("/admin/block/{blockID}/revisions", handlers.blockHandler.blockRevisions())

		// Page composition
		r.Post("/admin/page/{pageID}/children", handlers.composeHandler.addChild())
		r.Delete("/admin/page/{pageID}/children/{blockID}", handlers.composeHandler.removeChild())
		r.Put("/admin/page/{pageID}/order", handlers.composeHandler.reorder())
	})
}
