package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type appointmentRow struct {
	ID            string         `db:"id"`
	DoctorID      string         `db:"doctor_id"`
	PatientID     string         `db:"patient_id"`
	SlotDate      string         `db:"slot_date"`
	SlotTime      string         `db:"slot_time"`
	Amount        float64        `db:"amount"`
	Status        string         `db:"status"`
	PaymentStatus string         `db:"payment_status"`
	DoctorName    string         `db:"doctor_name"`
	PatientName   string         `db:"patient_name"`
	PatientEmail  string         `db:"patient_email"`
	ConfirmedAt   *time.Time     `db:"confirmed_at"`
	CancelledBy   string         `db:"cancelled_by"`
	CancelledByID string         `db:"cancelled_by_id"`
	Reason        string         `db:"reason"`
	CancelledAt   *time.Time     `db:"cancelled_at"`
	RefundDate    *time.Time     `db:"refund_date"`
	RefundAmount  float64        `db:"refund_amount"`
	IsCompleted   bool           `db:"is_completed"`
	CompletedAt   *time.Time     `db:"completed_at"`
	CompletedBy   string         `db:"completed_by"`
	Offer         string         `db:"webrtc_offer"`
	Answer        string         `db:"webrtc_answer"`
	ICECandidates pq.StringArray `db:"ice_candidates"`
	CallEnded     bool           `db:"call_ended"`
	EndedBy       string         `db:"ended_by"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

const appointmentColumns = `id, doctor_id, patient_id, slot_date, slot_time, amount, status,
	payment_status, doctor_name, patient_name, patient_email, confirmed_at, cancelled_by,
	cancelled_by_id, reason, cancelled_at, refund_date, refund_amount, is_completed,
	completed_at, completed_by, webrtc_offer, webrtc_answer, ice_candidates, call_ended,
	ended_by, created_at, updated_at`

func (row *appointmentRow) toModel() *model.Appointment {
	return &model.Appointment{
		Base:          model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		DoctorID:      row.DoctorID,
		PatientID:     row.PatientID,
		SlotDate:      row.SlotDate,
		SlotTime:      row.SlotTime,
		Amount:        row.Amount,
		Status:        model.AppointmentStatus(row.Status),
		PaymentStatus: model.PaymentStatus(row.PaymentStatus),
		DoctorName:    row.DoctorName,
		PatientName:   row.PatientName,
		PatientEmail:  row.PatientEmail,
		ConfirmedAt:   row.ConfirmedAt,
		CancelledBy:   row.CancelledBy,
		CancelledByID: row.CancelledByID,
		Reason:        row.Reason,
		CancelledAt:   row.CancelledAt,
		RefundDate:    row.RefundDate,
		RefundAmount:  row.RefundAmount,
		IsCompleted:   row.IsCompleted,
		CompletedAt:   row.CompletedAt,
		CompletedBy:   row.CompletedBy,
		CallState: model.CallState{
			Offer:         row.Offer,
			Answer:        row.Answer,
			ICECandidates: []string(row.ICECandidates),
			Ended:         row.CallEnded,
			EndedBy:       row.EndedBy,
		},
	}
}

func appointmentArgs(a *model.Appointment) []interface{} {
	candidates := a.ICECandidates
	if candidates == nil {
		candidates = []string{}
	}
	return []interface{}{
		a.ID, a.DoctorID, a.PatientID, a.SlotDate, a.SlotTime, a.Amount, a.Status,
		a.PaymentStatus, a.DoctorName, a.PatientName, a.PatientEmail, a.ConfirmedAt,
		a.CancelledBy, a.CancelledByID, a.Reason, a.CancelledAt, a.RefundDate,
		a.RefundAmount, a.IsCompleted, a.CompletedAt, a.CompletedBy, a.Offer, a.Answer,
		pq.Array(candidates), a.Ended, a.EndedBy, a.CreatedAt, a.UpdatedAt,
	}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	stamp(&apt.ID, &apt.CreatedAt, &apt.UpdatedAt)
	query := `INSERT INTO appointments (` + appointmentColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	if _, err := r.db.ExecContext(ctx, query, appointmentArgs(apt)...); err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var row appointmentRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []interface{}
	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	out := make([]*model.Appointment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (r *appointmentRepository) UpdateIfStatus(ctx context.Context, apt *model.Appointment, expected model.AppointmentStatus) error {
	if err := checkID(apt.ID); err != nil {
		return err
	}
	apt.UpdatedAt = time.Now().UTC()

	query := `UPDATE appointments SET
		doctor_id = $2, patient_id = $3, slot_date = $4, slot_time = $5, amount = $6,
		status = $7, payment_status = $8, doctor_name = $9, patient_name = $10,
		patient_email = $11, confirmed_at = $12, cancelled_by = $13, cancelled_by_id = $14,
		reason = $15, cancelled_at = $16, refund_date = $17, refund_amount = $18,
		is_completed = $19, completed_at = $20, completed_by = $21, webrtc_offer = $22,
		webrtc_answer = $23, ice_candidates = $24, call_ended = $25, ended_by = $26,
		updated_at = $27
		WHERE id = $1 AND status = $28`
	full := appointmentArgs(apt)
	args := append(full[:26:26], full[27], expected)
	n, err := r.execCount(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if n == 1 {
		return nil
	}

	ok, err := r.exists(ctx, "appointments", apt.ID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return repository.ErrStatusChanged
}

func (r *appointmentRepository) UpdateCall(ctx context.Context, id string, update repository.CallUpdate) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	query := `UPDATE appointments SET
		webrtc_offer = COALESCE($2, webrtc_offer),
		webrtc_answer = COALESCE($3, webrtc_answer),
		ice_candidates = CASE WHEN $4::text IS NULL THEN ice_candidates
			ELSE array_append(ice_candidates, $4::text) END,
		call_ended = call_ended OR $5::text IS NOT NULL,
		ended_by = COALESCE($5, ended_by),
		updated_at = $6
		WHERE id = $1
		RETURNING ` + appointmentColumns

	var row appointmentRow
	err := r.db.GetContext(ctx, &row, query, id,
		update.Offer, update.Answer, update.AddCandidate, update.EndedBy, time.Now().UTC())
	if err != nil {
		return nil, translate(err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
}

func (r *appointmentRepository) DeleteByStatus(ctx context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error) {
	n, err := r.execCount(ctx, `DELETE FROM appointments WHERE status = $1 AND updated_at < $2`, status, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s appointments: %w", status, err)
	}
	return n, nil
}
