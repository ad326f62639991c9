package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	"github.com/jwalitptl/medconnect-api/internal/service/appointment"
	"github.com/jwalitptl/medconnect-api/pkg/auth"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
	"github.com/jwalitptl/medconnect-api/pkg/validator"
)

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, *model.Appointment) {}

type testServer struct {
	router  *gin.Engine
	jwt     auth.JWTService
	doctor  *model.Doctor
	patient *model.Patient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.UseWithGin()

	ctx := context.Background()
	repos := memory.New()
	doctor := &model.Doctor{
		Name:       "Dr. Iyer",
		Email:      "iyer@example.com",
		Fees:       400,
		FixedSlots: []string{"10:00", "11:00"},
		IsActive:   true,
		Available:  true,
	}
	require.NoError(t, repos.Doctors.Create(ctx, doctor))
	patient := &model.Patient{Name: "Ravi", Email: "ravi@example.com"}
	require.NoError(t, repos.Patients.Create(ctx, patient))

	jwtSvc := auth.NewJWTService("handler-secret", time.Hour)
	svc := appointment.NewService(repos, nopEmitter{}, metrics.NewNop(), logger.Nop())

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), middleware.NewAuthMiddleware(jwtSvc, nil))
	return &testServer{router: r, jwt: jwtSvc, doctor: doctor, patient: patient}
}

func (s *testServer) token(t *testing.T, id, role string) string {
	t.Helper()
	tok, _, err := s.jwt.GenerateToken(auth.Subject{ID: id, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format(model.DateLayout)
}

func TestBookAndCancelOverHTTP(t *testing.T) {
	s := newTestServer(t)
	patientTok := s.token(t, s.patient.ID, model.RolePatient)
	date := futureDate()

	w, resp := s.do(t, http.MethodPost, "/api/appointments", patientTok, model.BookAppointmentRequest{
		DoctorID: s.doctor.ID, SlotDate: date, SlotTime: "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, resp["success"])
	apt := resp["data"].(map[string]interface{})
	id, ok := apt["id"].(string)
	require.True(t, ok)

	w, _ = s.do(t, http.MethodPost, "/api/appointments", patientTok, model.BookAppointmentRequest{
		DoctorID: s.doctor.ID, SlotDate: date, SlotTime: "10:00",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/doctors/"+s.doctor.ID+"/availability?date="+date, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slots := resp["data"].(map[string]interface{})["availableSlots"].([]interface{})
	assert.Equal(t, []interface{}{"11:00"}, slots)

	w, resp = s.do(t, http.MethodPost, "/api/appointments/"+id+"/cancel", patientTok, model.CancelAppointmentRequest{Reason: "travel"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(model.AppointmentStatusCancelled), resp["data"].(map[string]interface{})["status"])
}

func TestBookValidation(t *testing.T) {
	s := newTestServer(t)
	patientTok := s.token(t, s.patient.ID, model.RolePatient)

	tests := []struct {
		name   string
		token  string
		body   interface{}
		status int
	}{
		{"no token", "", model.BookAppointmentRequest{DoctorID: s.doctor.ID, SlotDate: futureDate(), SlotTime: "10:00"}, http.StatusUnauthorized},
		{"doctor cannot book", s.token(t, s.doctor.ID, model.RoleDoctor), model.BookAppointmentRequest{DoctorID: s.doctor.ID, SlotDate: futureDate(), SlotTime: "10:00"}, http.StatusForbidden},
		{"missing doctor", patientTok, model.BookAppointmentRequest{SlotDate: futureDate(), SlotTime: "10:00"}, http.StatusBadRequest},
		{"bad date", patientTok, model.BookAppointmentRequest{DoctorID: s.doctor.ID, SlotDate: "01-06-2024", SlotTime: "10:00"}, http.StatusBadRequest},
		{"unknown doctor", patientTok, model.BookAppointmentRequest{DoctorID: uuid.NewString(), SlotDate: futureDate(), SlotTime: "10:00"}, http.StatusNotFound},
		{"malformed doctor id", patientTok, model.BookAppointmentRequest{DoctorID: "missing", SlotDate: futureDate(), SlotTime: "10:00"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := s.do(t, http.MethodPost, "/api/appointments", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestConfirmOverHTTPIsForDoctorsAndAdmins(t *testing.T) {
	s := newTestServer(t)
	patientTok := s.token(t, s.patient.ID, model.RolePatient)

	w, resp := s.do(t, http.MethodPost, "/api/appointments", patientTok, model.BookAppointmentRequest{
		DoctorID: s.doctor.ID, SlotDate: futureDate(), SlotTime: "11:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := resp["data"].(map[string]interface{})["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/appointments/"+id+"/confirm", patientTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/appointments/"+id, patientTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.PaymentStatusPending), resp["data"].(map[string]interface{})["paymentStatus"])

	w, resp = s.do(t, http.MethodPost, "/api/appointments/"+id+"/confirm", s.token(t, s.doctor.ID, model.RoleDoctor), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(model.AppointmentStatusConfirmed), resp["data"].(map[string]interface{})["status"])
}
