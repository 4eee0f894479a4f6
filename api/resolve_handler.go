package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tmarek/blockpress-backend/database"
	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/registry"
	"github.com/tmarek/blockpress-backend/services"
)

type resolveHandler struct {
	responder    Responder
	logger       zerolog.Logger
	resolver     *registry.SlugResolver
	blockRepo    *database.BlockRepo
	treeComposer *database.TreeComposer
	recorder     *services.AnalyticsRecorder
}

func newResolveHandler(db database.Database, resolver *registry.SlugResolver, recorder *services.AnalyticsRecorder) resolveHandler {
	logger := log.With().Str("handlerName", "resolveHandler").Logger()

	return resolveHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		resolver:     resolver,
		blockRepo:    db.BlockRepo(),
		treeComposer: db.TreeComposer(),
		recorder:     recorder,
	}
}

// resolveSlug serves the public content path. Redirect blocks answer with
// an HTTP redirect via the fast path, everything else returns the winning
// block. Missing slugs are a not-found result, never a surfaced error, and
// the click fact is recorded without gating the response.
func (h resolveHandler) resolveSlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		// Redirect hot path: no full-block hydration.
		if target, err := h.resolver.ResolveRedirectTarget(slug); err == nil {
			h.recorder.TrackClick(target.BlockID, clickContextFrom(r))
			code := target.StatusCode
			if code == 0 {
				code = http.StatusMovedPermanently
			}
			http.Redirect(w, r, target.URL, code)
			return
		}

		block, err := h.resolver.Resolve(slug)
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.WriteNotFound(w)
				return
			}
			h.responder.WriteError(w, err)
			return
		}

		h.recorder.TrackClick(block.ID, clickContextFrom(r))
		h.responder.WriteJSON(w, block)
	}
}

// resolveLanding serves the site root with the designated landing block.
func (h resolveHandler) resolveLanding() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		block, err := h.blockRepo.GetLandingBlock()
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.WriteNotFound(w)
				return
			}
			h.responder.WriteError(w, err)
			return
		}

		h.recorder.TrackClick(block.ID, clickContextFrom(r))
		h.responder.WriteJSON(w, block)
	}
}

// listIndex returns the published, non-private root blocks in display
// order for the public index listing.
func (h resolveHandler) listIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := h.blockRepo.ListRootBlocks()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "root blocks", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"blocks": blocks,
			"total":  len(blocks),
		})
	}
}

// getTree returns the block winning slug with its published descendants,
// for composite page rendering.
func (h resolveHandler) getTree() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		block, err := h.resolver.Resolve(slug)
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.WriteNotFound(w)
				return
			}
			h.responder.WriteError(w, err)
			return
		}

		if err := h.treeComposer.LoadChildren(block); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load children of", "block", err))
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

func clickContextFrom(r *http.Request) services.ClickContext {
	return services.ClickContext{
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}
}
