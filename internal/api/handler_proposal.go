package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rfpflow/internal/service"
)

type ProposalHandler struct {
	proposalService *service.ProposalService
}

func NewProposalHandler(proposalService *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// Create handles POST /api/proposals
func (h *ProposalHandler) Create(c *gin.Context) {
	var req service.ProposalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.proposalService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /api/proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.proposalService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListByRFP handles GET /api/proposals/rfp/:rfpId
func (h *ProposalHandler) ListByRFP(c *gin.Context) {
	rfpID, ok := idParam(c, "rfpId")
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByRFP(c.Request.Context(), rfpID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// Process handles POST /api/proposals/:id/process. The AI run happens on the
// worker; this only enqueues.
func (h *ProposalHandler) Process(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.proposalService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.proposalService.Enqueue(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"proposal_id": p.ID,
		"status":      "queued",
	})
}

// Reprocess handles POST /api/proposals/:id/reprocess. Unlike the queued
// process path, reprocessing runs in-line so the caller gets fresh results
// back in the response.
func (h *ProposalHandler) Reprocess(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.proposalService.Reprocess(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ProcessPending handles POST /api/proposals/process-pending by queueing
// every pending proposal for the worker.
func (h *ProposalHandler) ProcessPending(c *gin.Context) {
	queued, err := h.proposalService.EnqueuePending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

// Delete handles DELETE /api/proposals/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.proposalService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
