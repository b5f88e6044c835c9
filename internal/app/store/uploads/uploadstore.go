// internal/app/store/uploads/uploadstore.go
package uploadstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/sofischeduler/internal/app/system/ratelimit"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per upload attempt.
const Collection = "uploads"

const maxListLimit = 100

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts an UploadRecord. A blank ID gets a new UUID and a zero
// CreatedAt is set to time.Now().UTC(). The stored record is returned.
func (s *Store) Create(ctx context.Context, rec models.UploadRecord) (models.UploadRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return rec, err
}

// CreateFrom fills the client IP from r and inserts rec.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, rec models.UploadRecord) (models.UploadRecord, error) {
	rec.IP = ratelimit.ClientIP(r)
	return s.Create(ctx, rec)
}

// DeleteBefore removes records created before cutoff and returns how many
// were deleted.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListRecent returns up to limit records, newest first. limit is clamped to
// 1..100.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.UploadRecord, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
