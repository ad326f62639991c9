package prescription

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

func TestPrescriptionFlow(t *testing.T) {
	ctx := context.Background()
	repos := memory.New()
	svc := NewService(repos, logger.Nop())

	apt := &model.Appointment{
		DoctorID: "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b00", PatientID: "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b01",
		DoctorName: "Dr. Sen", PatientName: "Mira", SlotDate: "2024-06-01", SlotTime: "10:00",
		Status: model.AppointmentStatusCompleted,
	}
	require.NoError(t, repos.Appointments.Create(ctx, apt))
	doctor := model.Actor{ID: apt.DoctorID, Role: model.RoleDoctor}
	patient := model.Actor{ID: apt.PatientID, Role: model.RolePatient}

	req := model.CreatePrescriptionRequest{
		AppointmentID: apt.ID,
		Diagnosis:     "Migraine",
		Medications:   []model.Medication{{Name: "Paracetamol", Dosage: "500mg", Frequency: "twice daily", Duration: "5 days"}},
	}

	_, err := svc.Create(ctx, model.Actor{ID: "someone-else", Role: model.RoleDoctor}, req)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	p, err := svc.Create(ctx, doctor, req)
	require.NoError(t, err)
	assert.Equal(t, apt.PatientID, p.PatientID)
	assert.Equal(t, "Mira", p.PatientName)

	mine, err := svc.List(ctx, patient, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	notes := "Avoid screens"
	updated, err := svc.Update(ctx, doctor, p.ID, model.UpdatePrescriptionRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Avoid screens", updated.Notes)

	_, err = svc.Update(ctx, patient, p.ID, model.UpdatePrescriptionRequest{Notes: &notes})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	data, name, err := svc.PDF(ctx, patient, p.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "prescription-"+p.ID+".pdf", name)

	require.NoError(t, svc.Delete(ctx, doctor, p.ID))
	_, err = svc.Get(ctx, doctor, p.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
