package handler

import (
	"fmt"
	"net/http"

	"github.com/tulendi/cafe-directory/internal/audit"
	"github.com/tulendi/cafe-directory/internal/service"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler carries the admin-only mutations. Routes using it sit
// behind middleware.RequireAdmin, so the acting user id is always set.
type AdminHandler struct {
	cafeService *service.CafeService
	authService *service.AuthService
	trail       *audit.Trail
}

func NewAdminHandler(cafeService *service.CafeService, authService *service.AuthService, trail *audit.Trail) *AdminHandler {
	return &AdminHandler{
		cafeService: cafeService,
		authService: authService,
		trail:       trail,
	}
}

type AddCafeRequest struct {
	Name         string `json:"name" binding:"required"`
	MapURL       string `json:"map_url" binding:"required"`
	ImgURL       string `json:"img_url" binding:"required"`
	Location     string `json:"location" binding:"required"`
	Seats        string `json:"seats" binding:"required"`
	HasToilet    bool   `json:"has_toilet"`
	HasWifi      bool   `json:"has_wifi"`
	HasSockets   bool   `json:"has_sockets"`
	CanTakeCalls bool   `json:"can_take_calls"`
	CoffeePrice  string `json:"coffee_price"`
}

type UpdatePriceRequest struct {
	NewPrice string `json:"new_price" binding:"required"`
}

type DeleteByIDRequest struct {
	ID uint `json:"id" binding:"required"`
}

// AddCafe handles GET (form prompt) and POST (creation) on /add.
func (h *AdminHandler) AddCafe(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit café details to add it to the directory.",
		})
		return
	}

	var req AddCafeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Add cafe request parsing failed",
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	adminID := c.GetUint("user_id")

	cafe, err := h.cafeService.Add(service.CafeInput{
		Name:         req.Name,
		MapURL:       req.MapURL,
		ImgURL:       req.ImgURL,
		Location:     req.Location,
		Seats:        req.Seats,
		HasToilet:    req.HasToilet,
		HasWifi:      req.HasWifi,
		HasSockets:   req.HasSockets,
		CanTakeCalls: req.CanTakeCalls,
		CoffeePrice:  req.CoffeePrice,
	}, adminID)
	if err != nil {
		if err == service.ErrCafeNameExists {
			c.JSON(http.StatusConflict, gin.H{
				"message": "Cafe name exists.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to add cafe",
		})
		return
	}

	// Point the caller at the new detail view
	c.Header("Location", fmt.Sprintf("/cafe/%d", cafe.ID))
	c.JSON(http.StatusCreated, gin.H{
		"cafe": cafe,
	})
}

// UpdatePrice handles GET (current cafe for the form), POST and PATCH
// on /update-price/:id.
func (h *AdminHandler) UpdatePrice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if c.Request.Method == http.MethodGet {
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
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	adminID := c.GetUint("user_id")

	cafe, err := h.cafeService.UpdatePrice(id, req.NewPrice, adminID)
	if err != nil {
		if err == service.ErrCafeNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cafe not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update price",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Price updated to %s.", cafe.CoffeePrice),
		"cafe":    cafe,
	})
}

// DeleteCafe handles GET (form prompt) and POST (delete by id) on
// /delete-cafe.
func (h *AdminHandler) DeleteCafe(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit a café id to delete it.",
		})
		return
	}

	var req DeleteByIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	adminID := c.GetUint("user_id")

	if err := h.cafeService.Delete(req.ID, adminID); err != nil {
		if err == service.ErrCafeNotFound {
			// Warning notice, not a hard error
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Cafe not found.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete cafe",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cafe deleted.",
	})
}

// DeleteUser handles GET (form prompt) and POST (delete by id) on
// /delete-user.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.JSON(http.StatusOK, gin.H{
			"message": "Submit a user id to delete the account.",
		})
		return
	}

	var req DeleteByIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	adminID := c.GetUint("user_id")

	if err := h.authService.DeleteUser(req.ID, adminID); err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "User not found.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted.",
	})
}

// AuditLog serves GET /admin/audit: the most recent admin mutations.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	entries, err := h.trail.ReadRecent(100)
	if err != nil {
		logger.Log.Error("Failed to read audit trail",
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read audit trail",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
	})
}
