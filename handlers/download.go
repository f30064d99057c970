package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripcrew/services"
)

type DownloadRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Title       string `json:"title"`
	Text        string `json:"text" binding:"required"`
}

// DownloadHandler renders a combined plan to PDF and returns it as an
// attachment named <origin>_to_<destination>_<DDMMYYYY>.pdf.
func (h *Handler) DownloadHandler(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	pdfBytes, err := services.RenderPlanPDF(req.Text, req.Title)
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	filename := services.ExportFilename(req.Origin, req.Destination, h.now())
	log.Printf("✅ PDF generated: %s (%d bytes)", filename, len(pdfBytes))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *Handler) HealthHandler(c *gin.Context) {
	dbStatus := "not configured"
	if h.DB != nil {
		dbStatus = "ok"
		if err := h.DB.Ping(); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripCrew API",
		"airports": h.Airports.Len(),
		"database": dbStatus,
	})
}
