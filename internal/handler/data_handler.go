package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mail_admin/internal/model"
	"mail_admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DataHandler serves the paged listings behind the admin dashboard
type DataHandler struct {
	service service.ListingService
	log     zerolog.Logger
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(s service.ListingService, log zerolog.Logger) *DataHandler {
	return &DataHandler{service: s, log: log}
}

func historyFilters(c *gin.Context) model.HistoryFilters {
	return model.HistoryFilters{
		Search:     c.Query("search"),
		RoleFilter: c.DefaultQuery("roleFilter", model.HistoryFilterAll),
	}
}

func (h *DataHandler) GetData(c *gin.Context) {
	q := model.ListingQuery{
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Page:   1,
	}
	if pageParam := c.Query("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
			return
		}
		q.Page = page
	}
	if q.Type == model.ListingHistory {
		q.RoleFilter = historyFilters(c).RoleFilter
	}

	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidListingType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type parameter"})
			return
		}
		h.log.Error().Err(err).Str("type", q.Type).Msg("error fetching listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DataHandler) ExportHistoryCSV(c *gin.Context) {
	csvBuffer, err := h.service.ExportHistoryCSV(c.Request.Context(), historyFilters(c))
	if err != nil {
		h.log.Error().Err(err).Msg("error exporting email history to CSV")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export email history"})
		return
	}

	fileName := fmt.Sprintf("email_history_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterDataRoutes registers the admin-only listing routes
func (h *DataHandler) RegisterDataRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("")
	adminRoutes.Use(authMW)  // Requires authentication
	adminRoutes.Use(adminMW) // Requires admin role
	{
		adminRoutes.GET("/get-data", h.GetData)
		adminRoutes.GET("/history/export", h.ExportHistoryCSV)
	}
}
