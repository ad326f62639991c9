package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

type doctorRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Phone          string         `db:"phone"`
	Specialization string         `db:"specialization"`
	Degree         string         `db:"degree"`
	Experience     int            `db:"experience"`
	Fees           float64        `db:"fees"`
	About          string         `db:"about"`
	Address        string         `db:"address"`
	Image          string         `db:"image"`
	FixedSlots     pq.StringArray `db:"fixed_slots"`
	IsActive       bool           `db:"is_active"`
	Available      bool           `db:"available"`
	WorkingHours   []byte         `db:"working_hours"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type bookedSlotRow struct {
	DoctorID string `db:"doctor_id"`
	model.BookedSlot
}

const doctorColumns = `id, name, email, password_hash, phone, specialization, degree,
	experience, fees, about, address, image, fixed_slots, is_active, available,
	working_hours, created_at, updated_at`

func (row *doctorRow) toModel() (*model.Doctor, error) {
	d := &model.Doctor{
		Base:           model.Base{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		Name:           row.Name,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash,
		Phone:          row.Phone,
		Specialization: row.Specialization,
		Degree:         row.Degree,
		Experience:     row.Experience,
		Fees:           row.Fees,
		About:          row.About,
		Address:        row.Address,
		Image:          row.Image,
		FixedSlots:     []string(row.FixedSlots),
		BookedSlots:    []model.BookedSlot{},
		IsActive:       row.IsActive,
		Available:      row.Available,
	}
	if len(row.WorkingHours) > 0 {
		if err := json.Unmarshal(row.WorkingHours, &d.WorkingHours); err != nil {
			return nil, fmt.Errorf("failed to decode working hours: %w", err)
		}
	}
	return d, nil
}

func workingHoursJSON(hours map[string]model.WorkingDay) ([]byte, error) {
	if hours == nil {
		return nil, nil
	}
	return json.Marshal(hours)
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	doctor.Email = normalizeEmail(doctor.Email)
	stamp(&doctor.ID, &doctor.CreatedAt, &doctor.UpdatedAt)
	hours, err := workingHoursJSON(doctor.WorkingHours)
	if err != nil {
		return err
	}

	query := `INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.db.ExecContext(ctx, query,
		doctor.ID, doctor.Name, doctor.Email, doctor.PasswordHash, doctor.Phone,
		doctor.Specialization, doctor.Degree, doctor.Experience, doctor.Fees,
		doctor.About, doctor.Address, doctor.Image, pq.Array(doctor.FixedSlots),
		doctor.IsActive, doctor.Available, hours, doctor.CreatedAt, doctor.UpdatedAt,
	)
	return translate(err)
}

func (r *doctorRepository) Get(ctx context.Context, id string) (*model.Doctor, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email = $1`, normalizeEmail(email))
}

func (r *doctorRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Doctor, error) {
	var row doctorRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		return nil, translate(err)
	}
	doctors, err := r.withSlots(ctx, []doctorRow{row})
	if err != nil {
		return nil, err
	}
	return doctors[0], nil
}

func (r *doctorRepository) List(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE 1=1`
	var args []interface{}
	if filter.OnlyActive {
		query += ` AND is_active`
	}
	if filter.Specialization != "" {
		args = append(args, filter.Specialization)
		query += fmt.Sprintf(" AND lower(specialization) = lower($%d)", len(args))
	}
	query += ` ORDER BY created_at DESC`

	var rows []doctorRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return r.withSlots(ctx, rows)
}

// withSlots converts rows and attaches their booked slots in booking order.
func (r *doctorRepository) withSlots(ctx context.Context, rows []doctorRow) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	byID := make(map[string]*model.Doctor, len(rows))
	ids := make([]string, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}

	var slots []bookedSlotRow
	query := `SELECT doctor_id, slot_date, slot_time FROM doctor_booked_slots
		WHERE doctor_id = ANY($1::uuid[]) ORDER BY created_at, slot_date, slot_time`
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}
	for _, s := range slots {
		if d, ok := byID[s.DoctorID]; ok {
			d.BookedSlots = append(d.BookedSlots, s.BookedSlot)
		}
	}
	return out, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	if err := checkID(doctor.ID); err != nil {
		return err
	}
	hours, err := workingHoursJSON(doctor.WorkingHours)
	if err != nil {
		return err
	}
	doctor.UpdatedAt = time.Now().UTC()

	query := `UPDATE doctors SET name = $1, email = $2, password_hash = $3, phone = $4,
		specialization = $5, degree = $6, experience = $7, fees = $8, about = $9,
		address = $10, image = $11, fixed_slots = $12, is_active = $13, available = $14,
		working_hours = $15, updated_at = $16
		WHERE id = $17`
	return r.exec(ctx, query,
		doctor.Name, normalizeEmail(doctor.Email), doctor.PasswordHash, doctor.Phone,
		doctor.Specialization, doctor.Degree, doctor.Experience, doctor.Fees,
		doctor.About, doctor.Address, doctor.Image, pq.Array(doctor.FixedSlots),
		doctor.IsActive, doctor.Available, hours, doctor.UpdatedAt, doctor.ID,
	)
}

// ReserveSlot relies on the (doctor_id, slot_date, slot_time) unique key.
func (r *doctorRepository) ReserveSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE doctors SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), doctorID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrNotFound
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO doctor_booked_slots (doctor_id, slot_date, slot_time) VALUES ($1, $2, $3)`,
			doctorID, slot.Date, slot.Time)
		if err = translate(err); errors.Is(err, repository.ErrDuplicate) {
			return repository.ErrSlotTaken
		}
		return err
	})
}

func (r *doctorRepository) ReleaseSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	ok, err := r.exists(ctx, "doctors", doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	_, err = r.execCount(ctx,
		`DELETE FROM doctor_booked_slots WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3`,
		doctorID, slot.Date, slot.Time)
	return err
}
