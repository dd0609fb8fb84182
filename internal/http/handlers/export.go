package handlers

import (
	"net/http"
	"strings"

	"todo_webapp/internal/export"

	"github.com/gin-gonic/gin"
)

// ExportTasks renders the board as json, csv or pdf.
func (h *Handler) ExportTasks(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	ct := export.ContentType(format)
	if ct == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of " + strings.Join(export.Formats, ", ")})
		return
	}

	data, err := h.Exporter.Render(h.Board.Snapshot(), format)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.`+format+`"`)
	c.Data(http.StatusOK, ct, data)
}
