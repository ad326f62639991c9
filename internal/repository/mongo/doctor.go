package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type doctorRepository struct {
	col *mongodrv.Collection
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	doctor.Email = normalizeEmail(doctor.Email)
	stamp(&doctor.ID, &doctor.CreatedAt, &doctor.UpdatedAt)
	if doctor.BookedSlots == nil {
		doctor.BookedSlots = []model.BookedSlot{}
	}
	_, err := r.col.InsertOne(ctx, doctor)
	return translate(err)
}

func (r *doctorRepository) Get(ctx context.Context, id string) (*model.Doctor, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return findOne[model.Doctor](ctx, r.col, byID(id))
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return findOne[model.Doctor](ctx, r.col, bson.M{"email": normalizeEmail(email)})
}

func (r *doctorRepository) List(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	q := bson.M{}
	if filter.OnlyActive {
		q["isActive"] = true
	}
	if filter.Specialization != "" {
		q["specialization"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.Specialization) + "$", "$options": "i"}
	}
	return findMany[model.Doctor](ctx, r.col, q)
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	if err := checkID(doctor.ID); err != nil {
		return err
	}
	doctor.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":           doctor.Name,
		"email":          normalizeEmail(doctor.Email),
		"passwordHash":   doctor.PasswordHash,
		"phone":          doctor.Phone,
		"specialization": doctor.Specialization,
		"degree":         doctor.Degree,
		"experience":     doctor.Experience,
		"fees":           doctor.Fees,
		"about":          doctor.About,
		"address":        doctor.Address,
		"image":          doctor.Image,
		"fixedSlots":     doctor.FixedSlots,
		"isActive":       doctor.IsActive,
		"available":      doctor.Available,
		"workingHours":   doctor.WorkingHours,
		"updatedAt":      doctor.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, byID(doctor.ID), bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReserveSlot pushes the slot only when no entry with the same date and time
// exists, so the check and the write are one server-side operation.
func (r *doctorRepository) ReserveSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	filter := bson.M{
		"_id": doctorID,
		"bookedSlots": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"date": slot.Date,
			"time": slot.Time,
		}}},
	}
	update := bson.M{
		"$push": bson.M{"bookedSlots": slot},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, byID(doctorID))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrSlotTaken
}

func (r *doctorRepository) ReleaseSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	update := bson.M{
		"$pull": bson.M{"bookedSlots": bson.M{"date": slot.Date, "time": slot.Time}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, byID(doctorID), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
