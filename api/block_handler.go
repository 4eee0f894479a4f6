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
	"github.com/tmarek/blockpress-backend/models"
	"github.com/tmarek/blockpress-backend/registry"
	"github.com/tmarek/blockpress-backend/services"
)

type blockHandler struct {
	responder      Responder
	logger         zerolog.Logger
	blockRepo      *database.BlockRepo
	tagRepo        *database.TagRepo
	revisionRepo   *database.RevisionRepo
	clickRepo      *database.ClickRepo
	cascadeDeleter *database.CascadeDeleter
	generator      *registry.SlugGenerator
}

func newBlockHandler(db database.Database, generator *registry.SlugGenerator) blockHandler {
	logger := log.With().Str("handlerName", "blockHandler").Logger()

	return blockHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		blockRepo:      db.BlockRepo(),
		tagRepo:        db.TagRepo(),
		revisionRepo:   db.RevisionRepo(),
		clickRepo:      db.ClickRepo(),
		cascadeDeleter: db.CascadeDeleter(),
		generator:      generator,
	}
}

type createBlockRequest struct {
	Slug         string          `json:"slug,omitempty"`
	Title        string          `json:"title,omitempty"`
	Renderer     string          `json:"renderer"`
	ParentID     *uuid.UUID      `json:"parentId,omitempty"`
	Data         json.RawMessage `json:"data"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	DisplayOrder int             `json:"displayOrder,omitempty"`
	Status       string          `json:"status,omitempty"`
	IsPrivate    bool            `json:"isPrivate,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

type updateBlockRequest struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// BlockStats aggregates a block's click analytics for the admin dashboard.
type BlockStats struct {
	BlockID      uuid.UUID                `json:"blockId"`
	TotalClicks  int64                    `json:"totalClicks"`
	Referrers    []database.ReferrerCount `json:"referrers"`
	RecentClicks []*models.Click          `json:"recentClicks"`
}

// createBlock creates a new content block, generating a slug from the
// title when none is supplied.
func (h blockHandler) createBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode create block request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if req.Renderer == "" {
			h.responder.WriteError(w, errs.NewValidationError("renderer", "renderer is required"))
			return
		}

		data, err := prepareData(req.Renderer, datatypes.JSON(req.Data))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		slug := req.Slug
		if slug == "" {
			title := req.Title
			if title == "" {
				title = titleFromData(req.Renderer, data)
			}
			if title == "" {
				h.responder.WriteError(w, errs.NewValidationError("slug", "either slug or title is required"))
				return
			}
			slug, err = h.generator.GenerateUnique(title, req.Renderer)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("generate slug for", "block", err))
				return
			}
		}

		block, err := h.blockRepo.CreateBlock(database.CreateBlockSpec{
			Slug:         slug,
			Renderer:     req.Renderer,
			ParentID:     req.ParentID,
			Data:         data,
			Meta:         datatypes.JSON(req.Metadata),
			DisplayOrder: req.DisplayOrder,
			Status:       req.Status,
			IsPrivate:    req.IsPrivate,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		for _, value := range req.Tags {
			tag := &models.BlockTag{BlockID: block.ID, Value: value}
			if err := h.tagRepo.Add(tag); err != nil {
				h.logger.Error().Err(err).Str("tag_value", value).Msg("Failed to create block tag")
				// Continue creating other tags even if one fails
			}
		}

		created, err := h.blockRepo.GetBlockByID(block.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created", "block", err))
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, created)
	}
}

// updateBlock merges payload and metadata changes into an existing block.
func (h blockHandler) updateBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		var req updateBlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		data := datatypes.JSON(req.Data)
		if len(data) > 0 {
			existing, err := h.blockRepo.GetBlockByID(blockID)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			data, err = prepareData(existing.Renderer, data)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		block, err := h.blockRepo.UpdateBlockData(blockID, data, datatypes.JSON(req.Metadata))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

// getBlock returns one block by id regardless of status.
func (h blockHandler) getBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		block, err := h.blockRepo.GetBlockByID(blockID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

// listBlocks lists blocks filtered by renderer.
func (h blockHandler) listBlocks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer := r.URL.Query().Get("renderer")
		if renderer == "" {
			h.responder.WriteError(w, errs.NewValidationError("renderer", "renderer query parameter is required"))
			return
		}

		limit := queryInt(r, "limit", 100)
		includeUnpublished := r.URL.Query().Get("all") == "true"

		blocks, err := h.blockRepo.GetBlocksByRenderer(renderer, limit, includeUnpublished)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blocks", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"blocks": blocks,
			"total":  len(blocks),
		})
	}
}

// deactivateBlock soft-deletes a block, freeing its slug.
func (h blockHandler) deactivateBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		if err := h.blockRepo.DeactivateBlock(blockID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"status": "archived"})
	}
}

// publishBlock moves a draft or archived block back into the slug namespace.
func (h blockHandler) publishBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		block, err := h.blockRepo.PublishBlock(blockID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, block)
	}
}

// purgeBlock hard-deletes a block's entire subtree and dependent rows.
func (h blockHandler) purgeBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		if err := h.cascadeDeleter.DeleteSubtree(blockID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"status": "deleted"})
	}
}

// setLandingBlock designates a block as the single site-root block.
func (h blockHandler) setLandingBlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		if err := h.blockRepo.SetLandingBlock(blockID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{"status": "landing"})
	}
}

// blockStats returns a block's click analytics.
func (h blockHandler) blockStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		if _, err := h.blockRepo.GetBlockByID(blockID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		total, err := h.clickRepo.CountByBlock(blockID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count clicks for", "block", err))
			return
		}
		referrers, err := h.clickRepo.CountByReferrer(blockID, 10)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate referrers for", "block", err))
			return
		}
		recent, err := h.clickRepo.RecentByBlock(blockID, 20)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find recent clicks for", "block", err))
			return
		}

		h.responder.WriteJSON(w, BlockStats{
			BlockID:      blockID,
			TotalClicks:  total,
			Referrers:    referrers,
			RecentClicks: recent,
		})
	}
}

// blockRevisions lists a block's payload history, newest first.
func (h blockHandler) blockRevisions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, ok := h.parseBlockID(w, r)
		if !ok {
			return
		}

		revisions, err := h.revisionRepo.FindByBlock(blockID, queryInt(r, "limit", 20))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find revisions for", "block", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"revisions": revisions,
			"total":     len(revisions),
		})
	}
}

func (h blockHandler) parseBlockID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	blockIDStr := chi.URLParam(r, "blockID")
	if blockIDStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing blockID"))
		return uuid.Nil, false
	}
	blockID, err := uuid.Parse(blockIDStr)
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid blockID"))
		return uuid.Nil, false
	}
	return blockID, true
}

// prepareData validates the payload and, for articles, sanitizes the HTML
// content and refreshes the reading-time estimate before storage.
func prepareData(renderer string, raw datatypes.JSON) (datatypes.JSON, error) {
	decoded, err := models.DecodeBlockData(renderer, raw)
	if err != nil {
		return nil, errs.NewValidationError("data", err.Error())
	}

	if renderer == models.RendererArticle {
		article := decoded.(*models.ArticleData)
		article.Content = services.SanitizeArticleHTML(article.Content)
		article.ReadingTime = services.EstimateReadingTime(article.Content)
		return models.EncodeBlockData(article)
	}
	return raw, nil
}

// titleFromData pulls a slug-worthy title out of renderers that carry one.
func titleFromData(renderer string, raw datatypes.JSON) string {
	decoded, err := models.DecodeBlockData(renderer, raw)
	if err != nil {
		return ""
	}
	switch d := decoded.(type) {
	case *models.ArticleData:
		return d.Title
	case *models.CardData:
		return d.Title
	case *models.PageData:
		return d.Title
	case *models.HeadingData:
		return d.Text
	}
	return ""
}
