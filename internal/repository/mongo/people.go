package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

type patientRepository struct {
	col *mongodrv.Collection
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.Email = normalizeEmail(patient.Email)
	stamp(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
	_, err := r.col.InsertOne(ctx, patient)
	return translate(err)
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Patient](ctx, r.col, byID(id))
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return findOne[model.Patient](ctx, r.col, bson.M{"email": normalizeEmail(email)})
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	if err := checkID(patient.ID); err != nil {
		return err
	}
	patient.Email = normalizeEmail(patient.Email)
	patient.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.col, patient.ID, patient)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return findMany[model.Patient](ctx, r.col, bson.M{})
}

type userRepository struct {
	col *mongodrv.Collection
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	_, err := r.col.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.User](ctx, r.col, byID(id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.col, bson.M{"email": normalizeEmail(email)})
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := checkID(user.ID); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.col, user.ID, user)
}
