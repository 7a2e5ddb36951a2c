package handler

import (
	"context"
	"net/http"
	"strconv"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc service.CatalogService
}

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/trending", h.Trending)
	rg.GET("/anime/:id", h.Detail)
}

// Trending serves one page of the catalog; bad paging values are clamped, not rejected
func (h *CatalogHandler) Trending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(service.DefaultPerPage)))

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	result, page, perPage, err := h.svc.Trending(ctx, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedAnimeResponse(result, page, perPage))
}

func (h *CatalogHandler) Detail(c *gin.Context) {
	id, ok := parseAnimeID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	detail, err := h.svc.Detail(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDetailToResponse(detail))
}
