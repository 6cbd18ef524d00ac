package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voicedesk/database"
	"voicedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterID = "booking_id"

// MongoBookingRepo implements Repository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	counterColl *mongo.Collection
	seedOnce    sync.Once
	seedErr     error
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.MongoClient.Database("voicedesk")
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		counterColl: db.Collection("counters"),
	}
}

// seedCounter initializes the id counter from the current bookings max, so
// installs that predate the counter keep allocating unique ids.
func (repo *MongoBookingRepo) seedCounter(ctx context.Context) error {
	repo.seedOnce.Do(func() {
		err := repo.counterColl.FindOne(ctx, bson.M{"_id": counterID}).Err()
		if err == nil {
			return
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			repo.seedErr = fmt.Errorf("error reading booking counter: %w", err)
			return
		}

		var last models.Booking
		max := 0
		opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})
		if err := repo.bookingColl.FindOne(ctx, bson.M{}, opts).Decode(&last); err == nil {
			max = last.ID
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			repo.seedErr = fmt.Errorf("error reading max booking id: %w", err)
			return
		}

		_, err = repo.counterColl.UpdateOne(ctx,
			bson.M{"_id": counterID},
			bson.M{"$setOnInsert": bson.M{"seq": max}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			repo.seedErr = fmt.Errorf("error seeding booking counter: %w", err)
		}
	})
	return repo.seedErr
}

// NextID atomically increments and returns the booking id counter.
func (repo *MongoBookingRepo) NextID(ctx context.Context) (int, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repo.seedCounter(ctxWithTimeout); err != nil {
		return 0, err
	}

	var counter struct {
		Seq int `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := repo.counterColl.FindOneAndUpdate(ctxWithTimeout,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating booking id: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if _, err := repo.bookingColl.InsertOne(ctxWithTimeout, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its id, (nil, nil) on miss.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id int) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %d: %w", id, err)
	}
	return &booking, nil
}

// GetByPhone retrieves the first booking registered under a phone number, (nil, nil) on miss.
func (repo *MongoBookingRepo) GetByPhone(ctx context.Context, phone string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"phone_number": phone}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking for phone %s: %w", phone, err)
	}
	return &booking, nil
}

// Update modifies an existing booking's phone and time.
func (repo *MongoBookingRepo) Update(ctx context.Context, id int, phone, bookingTime string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"phone_number": phone,
		"time":         bookingTime,
		"updated_at":   time.Now(),
	}}
	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %d not found", id)
	}
	return nil
}

// List returns the most recent bookings, newest first.
func (repo *MongoBookingRepo) List(ctx context.Context, limit int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "id", Value: -1}}).SetLimit(limit)
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
