package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/tmarek/blockpress-backend/database"
	"github.com/tmarek/blockpress-backend/errs"
)

type composeHandler struct {
	responder    Responder
	logger       zerolog.Logger
	treeComposer *database.TreeComposer
}

func newComposeHandler(db database.Database) composeHandler {
	logger := log.With().Str("handlerName", "composeHandler").Logger()

	return composeHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		treeComposer: db.TreeComposer(),
	}
}

type addChildRequest struct {
	BlockID    uuid.UUID       `json:"blockId"`
	Order      int             `json:"order,omitempty"`
	LayoutHint json.RawMessage `json:"layoutHint,omitempty"`
}

type reorderRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds"`
}

// addChild attaches an existing block as a child of a page block.
func (h composeHandler) addChild() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, ok := h.parsePageID(w, r)
		if !ok {
			return
		}

		var req addChildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.BlockID == uuid.Nil {
			h.responder.WriteError(w, errs.NewValidationError("blockId", "blockId is required"))
			return
		}

		block, err := h.treeComposer.AddChild(pageID, req.BlockID, req.Order, datatypes.JSON(req.LayoutHint))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

// removeChild detaches a child block, restoring it to a root block.
func (h composeHandler) removeChild() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, ok := h.parsePageID(w, r)
		if !ok {
			return
		}

		blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid blockID"))
			return
		}

		block, err := h.treeComposer.RemoveChild(pageID, blockID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

// reorder rewrites sibling display order to match the supplied sequence.
func (h composeHandler) reorder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, ok := h.parsePageID(w, r)
		if !ok {
			return
		}

		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if len(req.OrderedIDs) == 0 {
			h.responder.WriteError(w, errs.NewValidationError("orderedIds", "orderedIds is required"))
			return
		}

		if err := h.treeComposer.Reorder(pageID, req.OrderedIDs); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"status": "reordered"})
	}
}

func (h composeHandler) parsePageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	pageIDStr := chi.URLParam(r, "pageID")
	if pageIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing pageID"))
		return uuid.Nil, false
	}
	pageID, err := uuid.Parse(pageIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid pageID"))
		return uuid.Nil, false
	}
	return pageID, true
}
