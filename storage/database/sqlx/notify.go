package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/darslik/core/notify"
)

type (
	notificationRow struct {
		ID        string    `db:"id"`
		UserID    string    `db:"user_id"`
		Type      string    `db:"type"`
		Title     string    `db:"title"`
		Message   string    `db:"message"`
		IsRead    bool      `db:"is_read"`
		CreatedAt time.Time `db:"created_at"`
	}

	recommendationRow struct {
		ID        string    `db:"id"`
		StudentID string    `db:"student_id"`
		LessonID  string    `db:"lesson_id"`
		Type      string    `db:"type"`
		Content   string    `db:"content"`
		IsRead    bool      `db:"is_read"`
		CreatedAt time.Time `db:"created_at"`
	}
)

const (
	notificationColumns   = `id, user_id, type, title, message, is_read, created_at`
	recommendationColumns = `id, student_id, lesson_id, type, content, is_read, created_at`
)

type notifyRepository struct {
	db *sqlx.DB
}

var _ notify.Repository = (*notifyRepository)(nil)

func NewNotifyRepository(db *sqlx.DB) notify.Repository {
	return &notifyRepository{db: db}
}

func (repo *notifyRepository) CreateNotification(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	n.ID = newID(n.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :type, :title, :message, :is_read, :created_at)`,
		notificationRow(n),
	)
	if err != nil {
		return notify.Notification{}, err
	}
	return n, nil
}

func (repo *notifyRepository) QueryNotifications(ctx context.Context, userID string, unreadOnly bool) ([]notify.Notification, error) {
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC`,
		userID, unreadOnly,
	)
	if err != nil {
		return nil, err
	}
	notifs := make([]notify.Notification, 0, len(rows))
	for _, row := range rows {
		n := notify.Notification(row)
		n.CreatedAt = n.CreatedAt.UTC()
		notifs = append(notifs, n)
	}
	return notifs, nil
}

// MarkNotificationsRead marks all the user's notifications read when ids is empty.
func (repo *notifyRepository) MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND (cardinality($2::text[]) = 0 OR id::text = ANY($2))`,
		userID, pq.StringArray(ids),
	)
	return err
}

func (repo *notifyRepository) CreateRecommendation(ctx context.Context, r notify.Recommendation) (notify.Recommendation, error) {
	r.ID = newID(r.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO ai_recommendations (`+recommendationColumns+`)
		VALUES (:id, :student_id, :lesson_id, :type, :content, :is_read, :created_at)`,
		recommendationRow(r),
	)
	if err != nil {
		return notify.Recommendation{}, err
	}
	return r, nil
}

func (repo *notifyRepository) QueryRecommendations(ctx context.Context, studentID string, unreadOnly bool) ([]notify.Recommendation, error) {
	var rows []recommendationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+recommendationColumns+` FROM ai_recommendations
		WHERE student_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC`,
		studentID, unreadOnly,
	)
	if err != nil {
		return nil, err
	}
	recs := make([]notify.Recommendation, 0, len(rows))
	for _, row := range rows {
		r := notify.Recommendation(row)
		r.CreatedAt = r.CreatedAt.UTC()
		recs = append(recs, r)
	}
	return recs, nil
}

func (repo *notifyRepository) MarkRecommendationsRead(ctx context.Context, studentID string, ids ...string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE ai_recommendations SET is_read = TRUE WHERE student_id = $1 AND (cardinality($2::text[]) = 0 OR id::text = ANY($2))`,
		studentID, pq.StringArray(ids),
	)
	return err
}
