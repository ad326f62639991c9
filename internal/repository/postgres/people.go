package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

type patientRepository struct {
	BaseRepository
}

const patientColumns = `id, name, email, password_hash, phone, gender, dob, address,
	blood_group, image, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.Email = normalizeEmail(patient.Email)
	stamp(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
	query := `INSERT INTO patients (` + patientColumns + `) VALUES (
		:id, :name, :email, :password_hash, :phone, :gender, :dob, :address,
		:blood_group, :image, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, patient)
	return translate(err)
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	var p model.Patient
	err := r.db.GetContext(ctx, &p, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, normalizeEmail(email))
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	if err := checkID(patient.ID); err != nil {
		return err
	}
	patient.Email = normalizeEmail(patient.Email)
	patient.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `UPDATE patients SET
		name = :name, email = :email, password_hash = :password_hash, phone = :phone,
		gender = :gender, dob = :dob, address = :address, blood_group = :blood_group,
		image = :image, updated_at = :updated_at
		WHERE id = :id`, patient)
	return rowsOrNotFound(res, err)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT `+patientColumns+` FROM patients ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return out, nil
}

type userRepository struct {
	BaseRepository
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`, user)
	return translate(err)
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var u model.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := checkID(user.ID); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `UPDATE users SET
		name = :name, email = :email, password_hash = :password_hash, role = :role,
		updated_at = :updated_at
		WHERE id = :id`, user)
	return rowsOrNotFound(res, err)
}
