package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/adapters/memory"
	"github.com/zatekoja/doctordirectory/backend/internal/api/handlers"
	"github.com/zatekoja/doctordirectory/backend/internal/application/services"
	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
)

func newReportHandler() *handlers.ReportHandler {
	return handlers.NewReportHandler(services.NewReportService(validation.NewValidator(), memory.NewDoctorStore()))
}

func postReport(handler *handlers.ReportHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reports/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ValidateReport(w, req)
	return w
}

func TestReportHandler_ValidateReport(t *testing.T) {
	handler := newReportHandler()

	w := postReport(handler, `{"website":"https://zd.si","phone":"01 123","accepts":"n","availability":"1,5","note":"ok"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["valid"])
	report := body["report"].(map[string]interface{})
	assert.Equal(t, "1.5", report["availability"])
}

func TestReportHandler_RejectsLongNote(t *testing.T) {
	handler := newReportHandler()
	note := strings.Repeat("x", 256)

	w := postReport(handler, `{"website":"https://zd.si","phone":"01 123","accepts":"y","availability":"1","note":"`+note+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decodeBody(t, w)["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "note must be at most 255 characters", fields["note"])
}

func TestReportHandler_MalformedBody(t *testing.T) {
	handler := newReportHandler()

	for _, body := range []string{`{"note":`, `{"unknown":"field"}`} {
		w := postReport(handler, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "invalid request body", decodeBody(t, w)["error"])
	}
}
