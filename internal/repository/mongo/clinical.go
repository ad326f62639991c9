package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type prescriptionRepository struct {
	col *mongodrv.Collection
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *prescriptionRepository) Get(ctx context.Context, id string) (*model.Prescription, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Prescription](ctx, r.col, byID(id))
}

func (r *prescriptionRepository) List(ctx context.Context, doctorID, patientID string) ([]*model.Prescription, error) {
	q := bson.M{}
	if doctorID != "" {
		q["docId"] = doctorID
	}
	if patientID != "" {
		q["userId"] = patientID
	}
	return findMany[model.Prescription](ctx, r.col, q)
}

func (r *prescriptionRepository) Update(ctx context.Context, p *model.Prescription) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.col, p.ID, p)
}

func (r *prescriptionRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, byID(id))
}

type paymentRepository struct {
	col *mongodrv.Collection
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*model.Payment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Payment](ctx, r.col, byID(id))
}

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error) {
	return findOne[model.Payment](ctx, r.col, bson.M{"appointmentId": appointmentID})
}

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Payment, error) {
	return findMany[model.Payment](ctx, r.col, bson.M{"userId": patientID})
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	if err := checkID(id); err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, byID(id), bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type reminderRepository struct {
	col *mongodrv.Collection
}

func (r *reminderRepository) Create(ctx context.Context, rem *model.Reminder) error {
	stamp(&rem.ID, &rem.CreatedAt, &rem.UpdatedAt)
	_, err := r.col.InsertOne(ctx, rem)
	return translate(err)
}

func (r *reminderRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Reminder, error) {
	return findMany[model.Reminder](ctx, r.col, bson.M{"userId": patientID})
}

func (r *reminderRepository) Delete(ctx context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, bson.M{"_id": id, "userId": patientID})
}

func (r *reminderRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type healthDataRepository struct {
	col *mongodrv.Collection
}

func (r *healthDataRepository) Create(ctx context.Context, d *model.HealthData) error {
	stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	_, err := r.col.InsertOne(ctx, d)
	return translate(err)
}

func (r *healthDataRepository) ListByPatient(ctx context.Context, patientID string, kind model.HealthDataType) ([]*model.HealthData, error) {
	q := bson.M{"userId": patientID}
	if kind != "" {
		q["type"] = kind
	}
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}})
	return findMany[model.HealthData](ctx, r.col, q, opts)
}

func (r *healthDataRepository) Delete(ctx context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, bson.M{"_id": id, "userId": patientID})
}

type contactRepository struct {
	col *mongodrv.Collection
}

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *contactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	return findMany[model.Contact](ctx, r.col, bson.M{})
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, byID(id))
}

type recordRepository struct {
	col *mongodrv.Collection
}

func (r *recordRepository) Create(ctx context.Context, rec *model.Record) error {
	stamp(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	_, err := r.col.InsertOne(ctx, rec)
	return translate(err)
}

func (r *recordRepository) Get(ctx context.Context, id string) (*model.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Record](ctx, r.col, byID(id))
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.Record, error) {
	return findMany[model.Record](ctx, r.col, bson.M{"userId": patientID})
}

func (r *recordRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, byID(id))
}
