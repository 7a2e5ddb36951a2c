package handler

import (
	"context"
	"net/http"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ListHandler struct {
	svc     service.MembershipService
	catalog service.CatalogService
}

func NewListHandler(svc service.MembershipService, catalog service.CatalogService) *ListHandler {
	return &ListHandler{svc: svc, catalog: catalog}
}

// RegisterRoutes mounts the list routes on the /api group.
// Membership probes and stats accept anonymous callers; everything else needs a user.
func (h *ListHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	lists := rg.Group("/lists")
	lists.GET("/:kind", requireAuth, h.List)
	lists.POST("/:kind", requireAuth, h.Add)
	lists.DELETE("/:kind/:anime_id", requireAuth, h.Remove)
	lists.PATCH("/:kind/:anime_id", requireAuth, h.UpdateRating)
	lists.GET("/:kind/:anime_id", optionalAuth, h.IsMember)

	rg.GET("/anime/:id/membership", optionalAuth, h.Membership)
	rg.GET("/stats", optionalAuth, h.Stats)
}

// Add fetches the anime from the catalog and stores a snapshot of it in the list
func (h *ListHandler) Add(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	var req dto.AddToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	item, err := h.catalog.Detail(ctx, req.AnimeID)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.svc.Add(ctx, kind, item.MediaData, service.AddOptions{Rating: req.Rating, Notes: req.Notes})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromEntryToResponse(*entry))
}

// List returns every entry of the list, newest first
func (h *ListHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	entries, err := h.svc.List(ctx, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(kind, entries))
}

// Remove is idempotent and always answers 204 on success
func (h *ListHandler) Remove(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	animeID, ok := parseAnimeID(c, "anime_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.svc.Remove(ctx, kind, animeID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ListHandler) IsMember(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	animeID, ok := parseAnimeID(c, "anime_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	member, err := h.svc.IsMember(ctx, kind, animeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": kind, "anime_id": animeID, "in_list": member})
}

// UpdateRating is only defined for the watched list
func (h *ListHandler) UpdateRating(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	if kind != models.KindWatched {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only watched entries can be rated"})
		return
	}
	animeID, ok := parseAnimeID(c, "anime_id")
	if !ok {
		return
	}

	var req dto.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.svc.UpdateRating(ctx, animeID, *req.Rating, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rating updated"})
}

// Membership reports all three lists for one anime
func (h *ListHandler) Membership(c *gin.Context) {
	animeID, ok := parseAnimeID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	in, err := h.svc.Membership(ctx, animeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMembershipResponse(animeID, in))
}

func (h *ListHandler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
