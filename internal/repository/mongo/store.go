// Package mongo is the MongoDB storage backend. Documents keep their ids as
// ObjectID hex strings.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jwalitptl/medconnect-api/internal/repository"
)

const (
	colDoctors       = "doctors"
	colPatients      = "patients"
	colUsers         = "users"
	colAppointments  = "appointments"
	colPrescriptions = "prescriptions"
	colPayments      = "payments"
	colReminders     = "reminders"
	colHealthData    = "healthdata"
	colContacts      = "contacts"
	colRecords       = "records"
)

// Connect opens a client against uri and returns every repository backed by
// database name.
func Connect(ctx context.Context, uri, name string) (*repository.Repositories, error) {
	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return New(client, client.Database(name)), nil
}

// New wires repositories onto an existing database handle.
func New(client *mongodrv.Client, db *mongodrv.Database) *repository.Repositories {
	return &repository.Repositories{
		Doctors:       &doctorRepository{col: db.Collection(colDoctors)},
		Patients:      &patientRepository{col: db.Collection(colPatients)},
		Users:         &userRepository{col: db.Collection(colUsers)},
		Appointments:  &appointmentRepository{col: db.Collection(colAppointments)},
		Prescriptions: &prescriptionRepository{col: db.Collection(colPrescriptions)},
		Payments:      &paymentRepository{col: db.Collection(colPayments)},
		Reminders:     &reminderRepository{col: db.Collection(colReminders)},
		HealthData:    &healthDataRepository{col: db.Collection(colHealthData)},
		Contacts:      &contactRepository{col: db.Collection(colContacts)},
		Records:       &recordRepository{col: db.Collection(colRecords)},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Migrate: func(ctx context.Context) error {
			return ensureIndexes(ctx, db)
		},
		Close: client.Disconnect,
	}
}

func ensureIndexes(ctx context.Context, db *mongodrv.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongodrv.IndexModel{
		colDoctors: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "specialization", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		colPatients: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		colUsers:    {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		colAppointments: {
			{Keys: bson.D{{Key: "docId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
		colPrescriptions: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "docId", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "appointmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		colReminders:  {{Keys: bson.D{{Key: "createdAt", Value: 1}}}, {Keys: bson.D{{Key: "userId", Value: 1}}}},
		colHealthData: {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}}}},
		colRecords:    {{Keys: bson.D{{Key: "userId", Value: 1}}}},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func checkID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return repository.ErrInvalidID
	}
	return nil
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func stamp(id *string, created, updated *time.Time) {
	now := time.Now().UTC()
	if *id == "" {
		*id = newID()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongodrv.ErrNoDocuments):
		return repository.ErrNotFound
	case mongodrv.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func findOne[T any](ctx context.Context, col *mongodrv.Collection, filter bson.M) (*T, error) {
	var out T
	if err := col.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, col *mongodrv.Collection, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	if len(opts) == 0 {
		opts = []*options.FindOptions{newestFirst}
	}
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deleteOne(ctx context.Context, col *mongodrv.Collection, filter bson.M) error {
	res, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func replace(ctx context.Context, col *mongodrv.Collection, id string, doc interface{}) error {
	res, err := col.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
