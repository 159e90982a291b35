package worker

import (
	"context"
	"time"

	"blog_backend/internal/events"

	"gorm.io/gorm"
)

// PostActivity is one processed post event.
type PostActivity struct {
	ID         uint      `gorm:"primaryKey"`
	PostID     string    `gorm:"type:varchar(36);index;not null"`
	AuthorID   string    `gorm:"type:varchar(36);index;not null"`
	EventType  string    `gorm:"type:varchar(32);not null"`
	OccurredAt time.Time `gorm:"not null"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (PostActivity) TableName() string {
	return "post_activities"
}

func recordActivity(ctx context.Context, db *gorm.DB, event events.PostEvent) error {
	activity := &PostActivity{
		PostID:     event.PostID,
		AuthorID:   event.AuthorID,
		EventType:  string(event.Type),
		OccurredAt: event.OccurredAt,
	}
	return db.WithContext(ctx).Create(activity).Error
}
