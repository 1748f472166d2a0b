package server

import (
	"fmt"
	"io"

	"kunjungan/internal/models"
	"kunjungan/internal/service"
	"kunjungan/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Response messages of the visit endpoints.
const (
	MsgVisitSubmitted = "Formulir kunjungan berhasil dikirim. Email konfirmasi telah dikirim."
	MsgVisitDeleted   = "Data kunjungan berhasil dihapus"
	msgStatusUpdated  = "Status berhasil diupdate menjadi %s"
)

// coverLetterField is the multipart field carrying the PDF letter.
const coverLetterField = "file_pengantar"

// SubmitVisit handles POST /api/visits
// @Summary Submit a visit request
// @Description Public intake form. Accepts an optional PDF cover letter.
// @Tags visits
// @Accept multipart/form-data
// @Produce json
// @Param namaInstitusi formData string true "Institution name"
// @Param kebutuhan formData string true "Purpose of the visit"
// @Param jumlahPengunjung formData integer true "Number of visitors"
// @Param jadwal formData string true "Visit date (YYYY-MM-DD)"
// @Param noTelp formData string true "Phone number"
// @Param email formData string true "Contact email"
// @Param file_pengantar formData file false "Cover letter (PDF)"
// @Success 201 {object} object{success=bool,message=string,data=models.VisitRequest}
// @Failure 400 {object} models.ErrorResponse
// @Router /visits [post]
func (s *Server) SubmitVisit(c *fiber.Ctx) error {
	in := service.SubmitVisitInput{
		Form: validation.VisitForm{
			InstitutionName: formValue(c, "namaInstitusi", "institution_name"),
			Purpose:         formValue(c, "kebutuhan", "purpose"),
			VisitorCount:    formValue(c, "jumlahPengunjung", "visitor_count"),
			ScheduledDate:   formValue(c, "jadwal", "scheduled_date"),
			Phone:           formValue(c, "noTelp", "phone"),
			Email:           formValue(c, "email"),
		},
	}

	if fh, err := c.FormFile(coverLetterField); err == nil {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		defer func() { _ = f.Close() }()

		// One byte past the limit is enough to reject oversized uploads.
		content, err := io.ReadAll(io.LimitReader(f, s.config.MaxFileSizeBytes()+1))
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		in.CoverLetter = content
		in.CoverLetterType = fh.Header.Get(fiber.HeaderContentType)
	}

	visit, err := s.visitService.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": MsgVisitSubmitted,
		"data":    visit,
	})
}

// ListVisits handles GET /api/visits
// @Summary List visit requests
// @Tags visits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,count=int,data=[]models.VisitRequest}
// @Failure 401 {object} models.ErrorResponse
// @Router /visits [get]
func (s *Server) ListVisits(c *fiber.Ctx) error {
	visits, err := s.visitService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(visits),
		"data":    visits,
	})
}

// GetVisit handles GET /api/visits/:id
// @Summary Get a visit request
// @Tags visits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visit ID"
// @Success 200 {object} object{success=bool,data=models.VisitRequest}
// @Failure 404 {object} models.ErrorResponse
// @Router /visits/{id} [get]
func (s *Server) GetVisit(c *fiber.Ctx) error {
	id, err := routeID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	visit, err := s.visitService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    visit,
	})
}

// UpdateVisitStatus handles PUT /api/visits/:id/status
// @Summary Approve, reject or reset a visit request
// @Tags visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visit ID"
// @Param request body object{status=string,rejection_reason=string} true "Target status"
// @Success 200 {object} object{success=bool,message=string,data=models.VisitRequest}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /visits/{id}/status [put]
func (s *Server) UpdateVisitStatus(c *fiber.Ctx) error {
	id, err := routeID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	visit, err := s.visitService.UpdateStatus(c.UserContext(), id, req.Status, req.RejectionReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf(msgStatusUpdated, visit.Status.Label()),
		"data":    visit,
	})
}

// DeleteVisit handles DELETE /api/visits/:id
// @Summary Delete a visit request and its cover letter
// @Tags visits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visit ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /visits/{id} [delete]
func (s *Server) DeleteVisit(c *fiber.Ctx) error {
	id, err := routeID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := s.visitService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": MsgVisitDeleted,
	})
}
