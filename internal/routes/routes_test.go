package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/mailer"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinic-scheduler/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ======================================================
// FIXTURE
// ======================================================

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, m mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return nil
}

func (s *recordingSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	db      *gorm.DB
	mail    *recordingSender
	audit   *audit.Dispatcher
	catalog testutil.Catalog
	admin   models.Admin
}

func newServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)

	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	admin := models.Admin{Name: "Desk", Email: "admin@clinic.com", PasswordHash: hash, Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	cfg := &config.Config{
		Env:              "test",
		FrontendURL:      "http://localhost:3000",
		ClinicTimezone:   "UTC",
		PublicRatePerMin: 600,
		SMTPHost:         "smtp.test",
		AdminEmail:       "desk@clinic.com",
		Clinic:           config.ClinicInfo{Phone: "+91 80 1234 5678", City: "Bengaluru"},
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	t.Cleanup(dispatcher.Close)

	s := &testServer{
		t:       t,
		engine:  gin.New(),
		db:      db,
		mail:    &recordingSender{},
		audit:   dispatcher,
		catalog: testutil.SeedCatalog(t, db),
		admin:   admin,
	}

	RegisterRoutes(s.engine, Deps{
		DB:          db,
		Config:      cfg,
		Logger:      log,
		Tokens:      auth.NewTokenService("test-secret", time.Hour),
		Revocations: auth.NewMemoryRevocations(),
		Store:       store,
		Mailer:      s.mail,
		Audit:       dispatcher,
	})
	return s
}

func (s *testServer) do(method, path, contentType string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path, token string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, path, "", nil, token)
}

func (s *testServer) json(method, path string, payload any, token string) *httptest.ResponseRecorder {
	b, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(method, path, "application/json", bytes.NewReader(b), token)
}

func (s *testServer) form(method, path string, values url.Values, token string) *httptest.ResponseRecorder {
	return s.do(method, path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()), token)
}

func (s *testServer) multipart(path string, fields map[string]string, fileField, filename string, data []byte, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(s.t, err)
		_, err = fw.Write(data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do(http.MethodPost, path, mw.FormDataContentType(), &buf, token)
}

func (s *testServer) login() string {
	w := s.json(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@clinic.com",
		"password": "secret123",
	}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &out)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func (s *testServer) booking(program models.Program) map[string]string {
	return map[string]string{
		"category":         "MIND",
		"consultationType": "OFFLINE",
		"serviceId":        s.catalog.MindService.ID,
		"practitionerId":   s.catalog.Practitioner.ID,
		"programId":        program.ID,
		"sessions":         `[{"date":"2025-03-03","time":"09:30 AM"}]`,
		"patientName":      "Ravi Kumar",
		"patientAge":       "41",
		"patientGender":    "male",
		"patientMobile":    "+91 99887 76655",
		"patientEmail":     "ravi@example.com",
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

// ======================================================
// TESTS
// ======================================================

func TestHealthAndIndex(t *testing.T) {
	s := newServer(t)

	w := s.get("/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	w = s.get("/api", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/appointments")

	w = s.get("/api/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route_not_found")
}

func TestAuthRoutes(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@clinic.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.login()

	w = s.get("/api/auth/profile", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@clinic.com")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusOK, s.get("/api/auth/verify", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/logout", "", nil, token).Code)

	w = s.get("/api/auth/profile", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_revoked")
}

func TestBookingLifecycle(t *testing.T) {
	s := newServer(t)

	w := s.multipart("/api/appointments", s.booking(s.catalog.Basic), "", "", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Appointment
	decode(t, w, &created)
	assert.Equal(t, "CONFIRMED", created.Status)

	t.Run("validation errors are field keyed", func(t *testing.T) {
		fields := s.booking(s.catalog.Basic)
		delete(fields, "patientName")
		w := s.multipart("/api/appointments", fields, "", "", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "patientName")
	})

	t.Run("admin routes need a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.get("/api/appointments", "").Code)
	})

	token := s.login()

	w = s.get("/api/appointments?searchQuery=ravi", token)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Total)

	assert.Equal(t, http.StatusOK, s.get("/api/appointments/"+created.ID, token).Code)

	w = s.json(http.MethodPatch, "/api/appointments/"+created.ID+"/status", map[string]string{"status": "COMPLETED"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPatch, "/api/appointments/"+created.ID+"/status", map[string]string{"status": "CANCELLED"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get("/api/admin/dashboard/stats", token)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		PendingAppointments int64 `json:"pendingAppointments"`
		CompletedThisMonth  int64 `json:"completedThisMonth"`
		TotalPatients       int64 `json:"totalPatients"`
	}
	decode(t, w, &stats)
	assert.EqualValues(t, 0, stats.PendingAppointments)
	assert.EqualValues(t, 1, stats.CompletedThisMonth)
	assert.EqualValues(t, 1, stats.TotalPatients)

	t.Run("program with appointments cannot be deleted", func(t *testing.T) {
		w := s.do(http.MethodDelete, "/api/programs/admin/"+s.catalog.Basic.ID, "", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "program_has_appointments")
	})

	t.Run("booking notifies the admin", func(t *testing.T) {
		w := s.get("/api/notifications", token)
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int64                 `json:"unreadCount"`
		}
		decode(t, w, &list)
		require.Len(t, list.Notifications, 1)
		assert.EqualValues(t, 1, list.UnreadCount)

		id := list.Notifications[0].ID
		assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/notifications/"+id+"/read", "", nil, token).Code)

		w = s.get("/api/notifications/unread-count", token)
		assert.JSONEq(t, `{"count":0}`, w.Body.String())

		w = s.do(http.MethodDelete, "/api/notifications/clear-read", "", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"deleted":1`)
	})
}

func TestContactRoutes(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Lata",
		"email":   "not-an-email",
		"message": "Hello",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Lata",
		"email":   "Lata@Example.com",
		"subject": "Residential stay",
		"message": "Do you have rooms in May?",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, s.mail.messages(), 2)
	assert.Equal(t, []string{"desk@clinic.com"}, s.mail.messages()[0].To)
	assert.Equal(t, []string{"lata@example.com"}, s.mail.messages()[1].To)

	w = s.get("/api/contact/info", "")
	assert.Contains(t, w.Body.String(), "Bengaluru")

	token := s.login()

	w = s.get("/api/contact/admin/inquiries?searchQuery=rooms", token)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data  []models.ContactInquiry `json:"data"`
		Total int64                   `json:"total"`
	}
	decode(t, w, &page)
	require.EqualValues(t, 1, page.Total)
	id := page.Data[0].ID

	w = s.get("/api/contact/admin/inquiries/"+id, token)
	assert.Contains(t, w.Body.String(), `"status":"READ"`)

	w = s.json(http.MethodPost, "/api/contact/admin/inquiries/"+id+"/reply", map[string]any{
		"message":   "Yes, from the 5th.",
		"sendEmail": true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"RESOLVED"`)
	require.Len(t, s.mail.messages(), 3)
	assert.Equal(t, "Re: Residential stay", s.mail.messages()[2].Subject)

	w = s.get("/api/contact/admin/stats", token)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalInquiries    int64 `json:"totalInquiries"`
		InquiriesByStatus []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		} `json:"inquiriesByStatus"`
	}
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.TotalInquiries)
	require.Len(t, stats.InquiriesByStatus, 1)
	assert.Equal(t, "RESOLVED", stats.InquiriesByStatus[0].Status)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/contact/admin/inquiries/"+id, "", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, s.get("/api/contact/admin/inquiries/"+id, token).Code)
}

func TestTestimonialRoutes(t *testing.T) {
	s := newServer(t)
	token := s.login()

	base := url.Values{
		"patientName": {"Meena"},
		"content":     {"Calm and caring staff."},
		"rating":      {"5"},
		"serviceId":   {s.catalog.MindService.ID},
	}

	bad := url.Values{}
	for k, v := range base {
		bad[k] = v
	}
	bad.Set("rating", "6")
	w := s.form(http.MethodPost, "/api/testimonials", bad, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rating")

	bad.Set("rating", "4")
	bad.Set("serviceId", "missing")
	w = s.form(http.MethodPost, "/api/testimonials", bad, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "serviceId")

	w = s.form(http.MethodPost, "/api/testimonials", base, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Testimonial
	decode(t, w, &created)

	var public []models.Testimonial
	decode(t, s.get("/api/testimonials", ""), &public)
	require.Len(t, public, 1)
	require.NotNil(t, public[0].Service)
	assert.Equal(t, "Meditation", public[0].Service.Title)

	w = s.get("/api/testimonials/stats", "")
	assert.Contains(t, w.Body.String(), `"totalTestimonials":1`)

	w = s.do(http.MethodPut, "/api/testimonials/"+created.ID+"/toggle-status", "", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"INACTIVE"`)

	decode(t, s.get("/api/testimonials", ""), &public)
	assert.Empty(t, public)
}

func TestUploadRoutes(t *testing.T) {
	s := newServer(t)
	token := s.login()

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	w := s.multipart("/api/uploads/single", nil, "file", "report.pdf", pdf, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		File storage.Object `json:"file"`
	}
	decode(t, w, &out)
	assert.Equal(t, "documents", out.File.Directory)

	w = s.get("/api/uploads/list/documents", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalCount":1`)

	assert.Equal(t, http.StatusBadRequest, s.get("/api/uploads/list/secrets", token).Code)
	assert.Equal(t, http.StatusOK, s.get("/api/uploads/info/"+out.File.Filename, token).Code)

	w = s.do(http.MethodDelete, "/api/uploads/"+out.File.Filename, "", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.get("/api/uploads/info/"+out.File.Filename, token).Code)

	w = s.multipart("/api/uploads/single", nil, "file", "script.sh", []byte("#!/bin/sh\necho hi\n"), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newServer(t)

	var services []models.Service
	decode(t, s.get("/api/services", ""), &services)
	assert.Len(t, services, 2)

	w := s.get("/api/services/meditation", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Meditation")

	assert.Equal(t, http.StatusNotFound, s.get("/api/services/unknown-slug", "").Code)

	var practitioners []models.Practitioner
	decode(t, s.get("/api/practitioners/public?serviceId="+s.catalog.MindService.ID, ""), &practitioners)
	assert.Len(t, practitioners, 1)

	decode(t, s.get("/api/practitioners/public?serviceId="+s.catalog.BodyService.ID, ""), &practitioners)
	assert.Empty(t, practitioners)

	var programs []models.Program
	decode(t, s.get("/api/programs?type=extended", ""), &programs)
	require.Len(t, programs, 1)
	assert.Equal(t, 3, programs[0].SessionCount)

	assert.Equal(t, http.StatusUnauthorized, s.form(http.MethodPost, "/api/services/admin", url.Values{"title": {"Yoga"}}, "").Code)
}
