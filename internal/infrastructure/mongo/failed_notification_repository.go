package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

const failedNotificationPending = "pending"

// FailedNotificationRepository stores undelivered notifications for replay.
type FailedNotificationRepository struct {
	collection *mongo.Collection
}

func NewFailedNotificationRepository(db *mongo.Database, collectionName string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: db.Collection(collectionName)}
}

func (r *FailedNotificationRepository) Save(ctx context.Context, failure application.FailedNotification) error {
	_, err := r.collection.InsertOne(ctx, failedNotificationDocument(failure))
	return err
}

func failedNotificationDocument(failure application.FailedNotification) bson.M {
	createdAt := failure.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	submission := failure.Submission
	return bson.M{
		"target": failure.Target,
		"payload": bson.M{
			"submissionId": submission.ID,
			"timestamp":    submission.Timestamp(),
			"company":      submission.Company,
			"email":        submission.Email,
			"role":         submission.Role,
			"coords":       submission.Coords,
			"recipient":    failure.Recipient,
		},
		"error":       failure.Error,
		"attempts":    failure.Attempts,
		"status":      failedNotificationPending,
		"createdAt":   createdAt,
		"lastTriedAt": createdAt,
	}
}
