package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

type prescriptionRepository struct {
	BaseRepository
}

type prescriptionRow struct {
	ID            string    `db:"id"`
	AppointmentID string    `db:"appointment_id"`
	DoctorID      string    `db:"doctor_id"`
	PatientID     string    `db:"patient_id"`
	DoctorName    string    `db:"doctor_name"`
	PatientName   string    `db:"patient_name"`
	Diagnosis     string    `db:"diagnosis"`
	Medications   []byte    `db:"medications"`
	Notes         string    `db:"notes"`
	FollowUpDate  string    `db:"follow_up_date"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const prescriptionColumns = `id, appointment_id, doctor_id, patient_id, doctor_name,
	patient_name, diagnosis, medications, notes, follow_up_date, created_at, updated_at`

func newPrescriptionRow(p *model.Prescription) (*prescriptionRow, error) {
	meds := p.Medications
	if meds == nil {
		meds = []model.Medication{}
	}
	raw, err := json.Marshal(meds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode medications: %w", err)
	}
	return &prescriptionRow{
		ID: p.ID, AppointmentID: p.AppointmentID, DoctorID: p.DoctorID, PatientID: p.PatientID,
		DoctorName: p.DoctorName, PatientName: p.PatientName, Diagnosis: p.Diagnosis,
		Medications: raw, Notes: p.Notes, FollowUpDate: p.FollowUpDate,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}, nil
}

func (row *prescriptionRow) toModel() (*model.Prescription, error) {
	p := &model.Prescription{
		Base:          model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		AppointmentID: row.AppointmentID,
		DoctorID:      row.DoctorID,
		PatientID:     row.PatientID,
		DoctorName:    row.DoctorName,
		PatientName:   row.PatientName,
		Diagnosis:     row.Diagnosis,
		Notes:         row.Notes,
		FollowUpDate:  row.FollowUpDate,
	}
	if err := json.Unmarshal(row.Medications, &p.Medications); err != nil {
		return nil, fmt.Errorf("failed to decode medications: %w", err)
	}
	return p, nil
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	row, err := newPrescriptionRow(p)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO prescriptions (`+prescriptionColumns+`) VALUES (
		:id, :appointment_id, :doctor_id, :patient_id, :doctor_name, :patient_name,
		:diagnosis, :medications, :notes, :follow_up_date, :created_at, :updated_at)`, row)
	return translate(err)
}

func (r *prescriptionRepository) Get(ctx context.Context, id string) (*model.Prescription, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var row prescriptionRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return row.toModel()
}

func (r *prescriptionRepository) List(ctx context.Context, doctorID, patientID string) ([]*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE 1=1`
	var args []interface{}
	if doctorID != "" {
		args = append(args, doctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if patientID != "" {
		args = append(args, patientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var rows []prescriptionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	out := make([]*model.Prescription, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, p *model.Prescription) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	row, err := newPrescriptionRow(p)
	if err != nil {
		return err
	}
	res, err := r.db.NamedExecContext(ctx, `UPDATE prescriptions SET
		diagnosis = :diagnosis, medications = :medications, notes = :notes,
		follow_up_date = :follow_up_date, updated_at = :updated_at
		WHERE id = :id`, row)
	return rowsOrNotFound(res, err)
}

func (r *prescriptionRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
}

type paymentRepository struct {
	BaseRepository
}

const paymentColumns = `id, appointment_id, patient_id, doctor_id, amount, currency, method,
	transaction_id, status, paid_at, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO payments (`+paymentColumns+`) VALUES (
		:id, :appointment_id, :patient_id, :doctor_id, :amount, :currency, :method,
		:transaction_id, :status, :paid_at, :created_at, :updated_at)`, p)
	return translate(err)
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*model.Payment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var p model.Payment
	if err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Payment, error) {
	out := make([]*model.Payment, 0)
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+paymentColumns+` FROM payments WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
}

type reminderRepository struct {
	BaseRepository
}

const reminderColumns = `id, patient_id, medicine_name, dosage, remind_time, notes, created_at, updated_at`

func (r *reminderRepository) Create(ctx context.Context, rem *model.Reminder) error {
	stamp(&rem.ID, &rem.CreatedAt, &rem.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO reminders (`+reminderColumns+`) VALUES (
		:id, :patient_id, :medicine_name, :dosage, :remind_time, :notes, :created_at, :updated_at)`, rem)
	return translate(err)
}

func (r *reminderRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Reminder, error) {
	out := make([]*model.Reminder, 0)
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+reminderColumns+` FROM reminders WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return out, nil
}

func (r *reminderRepository) Delete(ctx context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM reminders WHERE id = $1 AND patient_id = $2`, id, patientID)
}

func (r *reminderRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.execCount(ctx, `DELETE FROM reminders WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders: %w", err)
	}
	return n, nil
}

type healthDataRepository struct {
	BaseRepository
}

const healthDataColumns = `id, patient_id, type, value, unit, notes, recorded_at, created_at, updated_at`

func (r *healthDataRepository) Create(ctx context.Context, d *model.HealthData) error {
	stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO health_data (`+healthDataColumns+`) VALUES (
		:id, :patient_id, :type, :value, :unit, :notes, :recorded_at, :created_at, :updated_at)`, d)
	return translate(err)
}

func (r *healthDataRepository) ListByPatient(ctx context.Context, patientID string, kind model.HealthDataType) ([]*model.HealthData, error) {
	query := `SELECT ` + healthDataColumns + ` FROM health_data WHERE patient_id = $1`
	args := []interface{}{patientID}
	if kind != "" {
		args = append(args, kind)
		query += " AND type = $2"
	}
	query += " ORDER BY recorded_at DESC"

	out := make([]*model.HealthData, 0)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list health data: %w", err)
	}
	return out, nil
}

func (r *healthDataRepository) Delete(ctx context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM health_data WHERE id = $1 AND patient_id = $2`, id, patientID)
}

type contactRepository struct {
	BaseRepository
}

const contactColumns = `id, name, email, phone, subject, message, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO contacts (`+contactColumns+`) VALUES (
		:id, :name, :email, :phone, :subject, :message, :created_at, :updated_at)`, c)
	return translate(err)
}

func (r *contactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	out := make([]*model.Contact, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return out, nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
}

type recordRepository struct {
	BaseRepository
}

const recordColumns = `id, patient_id, title, description, file_name, file_path,
	content_type, size, created_at, updated_at`

func (r *recordRepository) Create(ctx context.Context, rec *model.Record) error {
	stamp(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO records (`+recordColumns+`) VALUES (
		:id, :patient_id, :title, :description, :file_name, :file_path,
		:content_type, :size, :created_at, :updated_at)`, rec)
	return translate(err)
}

func (r *recordRepository) Get(ctx context.Context, id string) (*model.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var rec model.Record
	if err := r.db.GetContext(ctx, &rec, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Record, error) {
	out := make([]*model.Record, 0)
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+recordColumns+` FROM records WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

func (r *recordRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM records WHERE id = $1`, id)
}
