package handler

import (
	"errors"
	"net/http"

	"mail_admin/internal/model"
	"mail_admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const msgRecipientRequired = "Recipient email is required"

// MailHandler dispatches single templated emails
type MailHandler struct {
	service service.MailService
	log     zerolog.Logger
}

// NewMailHandler creates a new MailHandler
func NewMailHandler(s service.MailService, log zerolog.Logger) *MailHandler {
	return &MailHandler{service: s, log: log}
}

func (h *MailHandler) SendMail(c *gin.Context) {
	adminID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgRecipientRequired})
		return
	}

	if _, err := h.service.Send(c.Request.Context(), adminID, req); err != nil {
		if errors.Is(err, service.ErrRecipientRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgRecipientRequired})
			return
		}
		h.log.Error().Err(err).Str("to", req.Email).Int64("admin_id", adminID).Msg("send-mail failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterMailRoutes registers the admin-only send route
func (h *MailHandler) RegisterMailRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.POST("/send-mail", authMW, adminMW, h.SendMail)
}
