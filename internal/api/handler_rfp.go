package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rfpflow/internal/service"
)

type RFPHandler struct {
	rfpService        *service.RFPService
	comparisonService *service.ComparisonService
}

func NewRFPHandler(rfpService *service.RFPService, comparisonService *service.ComparisonService) *RFPHandler {
	return &RFPHandler{
		rfpService:        rfpService,
		comparisonService: comparisonService,
	}
}

// Create handles POST /api/rfps
func (h *RFPHandler) Create(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rfp, err := h.rfpService.Create(c.Request.Context(), userID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rfp)
}

// List handles GET /api/rfps
func (h *RFPHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rfps, err := h.rfpService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfps)
}

// Get handles GET /api/rfps/:id
func (h *RFPHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rfp, err := h.rfpService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfp)
}

// Update handles PUT /api/rfps/:id
func (h *RFPHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req service.RFPUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rfp, err := h.rfpService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfp)
}

// Delete handles DELETE /api/rfps/:id
func (h *RFPHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.rfpService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send handles POST /api/rfps/send
func (h *RFPHandler) Send(c *gin.Context) {
	var req struct {
		RFPID     int   `json:"rfp_id"`
		VendorIDs []int `json:"vendor_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RFPID == 0 || len(req.VendorIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rfp_id and vendor_ids are required"})
		return
	}

	results, err := h.rfpService.SendToVendors(c.Request.Context(), req.RFPID, req.VendorIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "RFP sent",
		"results": results,
	})
}

// Vendors handles GET /api/rfps/:id/vendors
func (h *RFPHandler) Vendors(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	links, err := h.rfpService.Vendors(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// Proposals handles GET /api/rfps/:id/proposals
func (h *RFPHandler) Proposals(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.rfpService.Proposals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// ArchivedProposals handles GET /api/rfps/:id/proposals/archived
func (h *RFPHandler) ArchivedProposals(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.rfpService.ArchivedProposals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// Compare handles GET /api/rfps/:id/compare
func (h *RFPHandler) Compare(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.comparisonService.Compare(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
