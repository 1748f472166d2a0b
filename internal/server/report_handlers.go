package server

import (
	"fmt"

	"kunjungan/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetAvailablePeriods handles GET /api/reports/available-periods
// @Summary Months with approved visits
// @Description Newest first, each with an Indonesian display label.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=[]models.PeriodSummary}
// @Router /reports/available-periods [get]
func (s *Server) GetAvailablePeriods(c *fiber.Ctx) error {
	periods, err := s.reportService.AvailablePeriods(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    periods,
	})
}

// DownloadRekap handles GET /api/reports/pdf
// @Summary Monthly recap PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param month query int true "Month (1-12), alias bulan"
// @Param year query int true "Year, alias tahun"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports/pdf [get]
func (s *Server) DownloadRekap(c *fiber.Ctx) error {
	year, month, err := validation.ParseReportPeriod(
		queryValue(c, "month", "bulan"),
		queryValue(c, "year", "tahun"),
	)
	if err != nil {
		return respondError(c, err)
	}

	rekap, err := s.reportService.Rekap(c.UserContext(), year, month)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rekap.Filename))
	return c.Send(rekap.Content)
}
