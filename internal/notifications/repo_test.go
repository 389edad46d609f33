package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec(`DELETE FROM notifications`).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time, readAt *time.Time) models.Notification {
	t.Helper()

	notification := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeOrderUpdate,
		Title:     "Order update",
		Message:   "Your order is now Packed.",
		ReadAt:    readAt,
		CreatedAt: created,
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestNotificationsListPaginates(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	oldest := seedNotification(t, db, userID, base, nil)
	middle := seedNotification(t, db, userID, base.Add(time.Minute), nil)
	newest := seedNotification(t, db, userID, base.Add(2*time.Minute), nil)

	page, cursor, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	require.NotNil(t, cursor)
	assert.Equal(t, middle.ID, cursor.ID)

	rest, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
	assert.Nil(t, next)
}

func TestNotificationsListScopedToUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	mine := seedNotification(t, db, userID, base, nil)
	seedNotification(t, db, uuid.New(), base.Add(time.Minute), nil)

	page, cursor, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, mine.ID, page[0].ID)
	assert.Nil(t, cursor)
}

func TestNotificationsListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	readAt := base.Add(time.Hour)
	seedNotification(t, db, userID, base, &readAt)
	unread := seedNotification(t, db, userID, base.Add(time.Minute), nil)

	page, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, unread.ID, page[0].ID)
}

func TestMarkReadTransitions(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	notification := seedNotification(t, db, userID, base, nil)
	now := base.Add(time.Hour)

	first, err := repo.MarkRead(ctx, userID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, first.Found)
	assert.True(t, first.Updated)

	second, err := repo.MarkRead(ctx, userID, notification.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, second.Found)
	assert.False(t, second.Updated)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", notification.ID).Error)
	require.NotNil(t, stored.ReadAt)
	assert.True(t, stored.ReadAt.Equal(now))
}

func TestMarkReadUnknownNotification(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	result, err := repo.MarkRead(context.Background(), uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Updated)
}

func TestMarkReadOtherUsersNotification(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	notification := seedNotification(t, db, uuid.New(), base, nil)

	result, err := repo.MarkRead(ctx, uuid.New(), notification.ID, base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Found)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", notification.ID).Error)
	assert.Nil(t, stored.ReadAt)
}

func TestMarkAllReadCountsRows(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	readAt := base.Add(time.Hour)
	seedNotification(t, db, userID, base, nil)
	seedNotification(t, db, userID, base.Add(time.Minute), nil)
	seedNotification(t, db, userID, base.Add(2*time.Minute), &readAt)
	seedNotification(t, db, uuid.New(), base.Add(3*time.Minute), nil)

	count, err := repo.MarkAllRead(ctx, userID, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&unread).Error)
	assert.Zero(t, unread)
}

func TestDeleteReadBeforeKeepsUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	readAt := base.Add(time.Hour)
	oldRead := seedNotification(t, db, userID, base, &readAt)
	oldUnread := seedNotification(t, db, userID, base.Add(time.Minute), nil)
	recentRead := seedNotification(t, db, userID, base.Add(30*24*time.Hour), &readAt)

	deleted, err := repo.DeleteReadBefore(ctx, base.Add(15*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Order("created_at ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, oldUnread.ID, remaining[0].ID)
	assert.Equal(t, recentRead.ID, remaining[1].ID)

	var gone int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", oldRead.ID).
		Count(&gone).Error)
	assert.Zero(t, gone)
}
