package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rfpflow/internal/apperr"
	"rfpflow/internal/email"
	"rfpflow/internal/model"
	"rfpflow/internal/repository"
	"rfpflow/internal/service"
)

type EmailHandler struct {
	inboundService *service.InboundEmailService
	linkRepo       *repository.RFPVendorRepository
}

func NewEmailHandler(inboundService *service.InboundEmailService, linkRepo *repository.RFPVendorRepository) *EmailHandler {
	return &EmailHandler{
		inboundService: inboundService,
		linkRepo:       linkRepo,
	}
}

// Inbound handles POST /api/email/inbound, the webhook for vendor replies.
func (h *EmailHandler) Inbound(c *gin.Context) {
	var req struct {
		From    string            `json:"from"`
		Subject string            `json:"subject"`
		Text    string            `json:"text"`
		HTML    string            `json:"html"`
		Headers map[string]string `json:"headers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	body := req.Text
	if body == "" {
		body = req.HTML
	}

	p, err := h.inboundService.Handle(c.Request.Context(), email.InboundEmail{
		From:    req.From,
		Subject: req.Subject,
		Body:    body,
		Headers: req.Headers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Email received and proposal created",
		"proposal_id": p.ID,
		"status":      model.ProposalStatusPending,
	})
}

// Status handles GET /api/email/status/:messageId, reporting the dispatch
// state of one outgoing RFP email.
func (h *EmailHandler) Status(c *gin.Context) {
	messageID := c.Param("messageId")
	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid messageId"})
		return
	}

	link, err := h.linkRepo.FindByMessageID(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, apperr.FromDB(err, "email"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id": link.EmailMessageID,
		"rfp_id":     link.RFPID,
		"vendor_id":  link.VendorID,
		"status":     link.EmailStatus,
		"sent_at":    link.SentAt,
	})
}
