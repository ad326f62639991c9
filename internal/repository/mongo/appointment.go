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

type appointmentRepository struct {
	col *mongodrv.Collection
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	stamp(&apt.ID, &apt.CreatedAt, &apt.UpdatedAt)
	_, err := r.col.InsertOne(ctx, apt)
	return translate(err)
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Appointment](ctx, r.col, byID(id))
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	q := bson.M{}
	if filter.DoctorID != "" {
		q["docId"] = filter.DoctorID
	}
	if filter.PatientID != "" {
		q["userId"] = filter.PatientID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return findMany[model.Appointment](ctx, r.col, q)
}

func (r *appointmentRepository) UpdateIfStatus(ctx context.Context, apt *model.Appointment, expected model.AppointmentStatus) error {
	if err := checkID(apt.ID); err != nil {
		return err
	}
	apt.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": apt.ID, "status": expected}, apt)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, byID(apt.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrStatusChanged
}

func (r *appointmentRepository) UpdateCall(ctx context.Context, id string, update repository.CallUpdate) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Offer != nil {
		set["webrtcOffer"] = *update.Offer
	}
	if update.Answer != nil {
		set["webrtcAnswer"] = *update.Answer
	}
	if update.EndedBy != nil {
		set["callEnded"] = true
		set["endedBy"] = *update.EndedBy
	}
	doc := bson.M{"$set": set}
	if update.AddCandidate != nil {
		doc["$push"] = bson.M{"iceCandidates": *update.AddCandidate}
	}

	var out model.Appointment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, byID(id), doc, opts).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return deleteOne(ctx, r.col, byID(id))
}

func (r *appointmentRepository) DeleteByStatus(ctx context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{
		"status":    status,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
