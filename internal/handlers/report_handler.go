package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phpdave11/gofpdf"

	"leave-manager/internal/models"
)

// GetLeaveSummaryPDF генерирует PDF-сводку утвержденных отпусков за год (админ)
func (h *AppHandler) GetLeaveSummaryPDF(c *gin.Context) {
	year := time.Now().Year()
	if yearStr := c.Query("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат года"})
			return
		}
		year = parsed
	}

	from := models.NewDateOnly(year, time.January, 1)
	to := models.NewDateOnly(year, time.December, 31)
	events, err := h.calendarService.ApprovedInRange(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Resumen de ausencias aprobadas - %d", year))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 8, "Empleado", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Tipo", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Desde", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Hasta", "1", 0, "L", false, 0, "")
	pdf.CellFormat(15, 8, "Dias", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, ev := range events {
		pdf.CellFormat(55, 7, ev.OwnerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, ev.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, ev.StartDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, ev.EndDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, strconv.Itoa(ev.Days), "1", 1, "R", false, 0, "")
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=leave-summary-%d.pdf", year))
	if err := pdf.Output(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка генерации PDF: " + err.Error()})
	}
}
