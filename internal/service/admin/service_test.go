package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
)

func TestDashboardCountsAndLatest(t *testing.T) {
	repos := memory.New()
	ctx := context.Background()

	require.NoError(t, repos.Doctors.Create(ctx, &model.Doctor{Name: "Dr. A", Email: "a@example.com", IsActive: true}))
	require.NoError(t, repos.Doctors.Create(ctx, &model.Doctor{Name: "Dr. B", Email: "b@example.com"}))
	require.NoError(t, repos.Patients.Create(ctx, &model.Patient{Name: "P", Email: "p@example.com"}))
	for i := 0; i < 7; i++ {
		require.NoError(t, repos.Appointments.Create(ctx, &model.Appointment{
			DoctorID:  "d",
			PatientID: "p",
			SlotDate:  "2024-06-01",
			SlotTime:  fmt.Sprintf("%02d:00", 9+i),
			Status:    model.AppointmentStatusPending,
		}))
	}

	dash, err := NewService(repos).Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Doctors, "inactive doctors count too")
	assert.Equal(t, 1, dash.Patients)
	assert.Equal(t, 7, dash.Appointments)
	assert.Len(t, dash.Latest, latestAppointments)
}
