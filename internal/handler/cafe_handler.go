package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tulendi/cafe-directory/internal/service"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CafeHandler struct {
	cafeService *service.CafeService
}

func NewCafeHandler(cafeService *service.CafeService) *CafeHandler {
	return &CafeHandler{
		cafeService: cafeService,
	}
}

type SearchRequest struct {
	Location string `json:"location" binding:"required"`
}

// List serves GET /: the full directory, or an empty-state notice.
func (h *CafeHandler) List(c *gin.Context) {
	cafes, err := h.cafeService.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cafes",
		})
		return
	}

	if len(cafes) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Sorry, no cafés found.",
			"cafes":   []any{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cafes": cafes,
	})
}

// Detail serves GET /cafe/:id.
func (h *CafeHandler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cafe, err := h.cafeService.GetByID(id)
	if err != nil {
		if err == service.ErrCafeNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cafe not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cafe",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cafe": cafe,
	})
}

// Random serves GET /random: one uniformly chosen cafe.
func (h *CafeHandler) Random(c *gin.Context) {
	cafe, err := h.cafeService.Random()
	if err != nil {
		if err == service.ErrNoCafes {
			// Informational, not a failure
			c.JSON(http.StatusNotFound, gin.H{
				"message": "No cafés available.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to pick a cafe",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cafe": cafe,
	})
}

// Search handles GET (form prompt) and POST (exact-match location
// query) on /search.
func (h *CafeHandler) Search(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit a location to search for cafes.",
			"cafes":   []any{},
		})
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	cafes, err := h.cafeService.SearchByLocation(req.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed",
		})
		return
	}

	if len(cafes) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Sorry, we don't have cafes in '%s'.", req.Location),
			"cafes":   []any{},
		})
		return
	}

	logger.Log.Info("Location search matched",
		zap.String("location", req.Location),
		zap.Int("count", len(cafes)),
	)

	c.JSON(http.StatusOK, gin.H{
		"cafes": cafes,
	})
}

// Choose serves GET /choose-cafe: the full listing for selection UIs.
func (h *CafeHandler) Choose(c *gin.Context) {
	cafes, err := h.cafeService.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cafes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cafes": cafes,
	})
}

// parseID reads the :id path parameter. A value that is not a positive
// integer can never match a row, so it responds 404 itself, the same
// answer a lookup miss gives.
func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cafe not found",
		})
		return 0, false
	}
	return uint(id), true
}
