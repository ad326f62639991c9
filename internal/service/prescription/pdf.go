package prescription

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jwalitptl/medconnect-api/internal/model"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

// PDF renders a prescription the actor may view. It returns the document and
// a suggested file name.
func (s *Service) PDF(ctx context.Context, actor model.Actor, id string) ([]byte, string, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	data, err := Render(p)
	if err != nil {
		s.logger.WithContext(ctx).Error(err, "Failed to render prescription", "prescription_id", id)
		return nil, "", apperrors.Internal(err)
	}
	return data, fmt.Sprintf("prescription-%s.pdf", p.ID), nil
}

// Render lays out a single page A4 prescription.
func Render(p *model.Prescription) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Prescription "+p.ID, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "MedConnect Prescription", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(value), "", "L", false)
	}
	line("Doctor", p.DoctorName)
	line("Patient", p.PatientName)
	line("Date", p.CreatedAt.Format(model.DateLayout))
	line("Appointment", p.AppointmentID)
	pdf.Ln(3)
	line("Diagnosis", p.Diagnosis)
	pdf.Ln(3)

	widths := []float64{50, 30, 35, 30, 35}
	headers := []string{"Medicine", "Dosage", "Frequency", "Duration", "Instructions"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range p.Medications {
		cells := []string{m.Name, m.Dosage, m.Frequency, m.Duration, m.Instructions}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	line("Notes", p.Notes)
	line("Follow up", p.FollowUpDate)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
