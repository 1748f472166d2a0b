package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kunjungan/internal/models"
	"kunjungan/internal/service"
	"kunjungan/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadRekap(t *testing.T) {
	env := newTestEnv(t)
	env.seedVisit(t, models.VisitStatusApproved, time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC))
	env.seedVisit(t, models.VisitStatusPending, time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC))

	for _, path := range []string{
		"/api/reports/pdf?month=10&year=2025",
		"/api/rekap/pdf?bulan=10&tahun=2025",
	} {
		t.Run(path, func(t *testing.T) {
			resp := env.doAdmin(t, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
			assert.Equal(t, `attachment; filename="Rekap_Kunjungan_Oktober_2025.pdf"`, resp.Header.Get("Content-Disposition"))

			content, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
		})
	}
}

func TestDownloadRekap_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.seedVisit(t, models.VisitStatusRejected, time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/api/reports/pdf?month=10&year=2025", fiber.StatusNotFound, service.MsgReportEmpty},
		{"/api/reports/pdf?month=10", fiber.StatusBadRequest, validation.MsgPeriodRequired},
		{"/api/reports/pdf?month=13&year=2025", fiber.StatusBadRequest, validation.MsgPeriodMonthRange},
		{"/api/reports/pdf?month=10&year=abc", fiber.StatusBadRequest, validation.MsgPeriodYear},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := env.doAdmin(t, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.message, decodeBody(t, resp)["message"])
		})
	}

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/reports/pdf?month=10&year=2025", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetAvailablePeriods(t *testing.T) {
	env := newTestEnv(t)
	env.seedVisit(t, models.VisitStatusApproved, time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC))
	env.seedVisit(t, models.VisitStatusApproved, time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC))
	env.seedVisit(t, models.VisitStatusApproved, time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC))
	env.seedVisit(t, models.VisitStatusPending, time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC))

	for _, path := range []string{"/api/reports/available-periods", "/api/rekap/available-months"} {
		resp := env.doAdmin(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)

		data := decodeBody(t, resp)["data"].([]any)
		require.Len(t, data, 2)
		first := data[0].(map[string]any)
		assert.Equal(t, float64(2025), first["tahun"])
		assert.Equal(t, float64(10), first["bulan"])
		assert.Equal(t, float64(2), first["jumlah"])
		assert.Equal(t, "Oktober 2025 (2 kunjungan)", first["label"])
		assert.Equal(t, "September 2025 (1 kunjungan)", data[1].(map[string]any)["label"])
	}
}
