package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/darslik/core/notify"
)

type notifyRepository struct {
	db *DB
}

var _ notify.Repository = (*notifyRepository)(nil)

func NewNotifyRepository(db *DB) notify.Repository {
	return &notifyRepository{db: db}
}

func (repo *notifyRepository) CreateNotification(_ context.Context, n notify.Notification) (notify.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = newID(n.ID)
	cn := n
	repo.db.notifications[n.ID] = &cn
	return n, nil
}

func (repo *notifyRepository) QueryNotifications(_ context.Context, userID string, unreadOnly bool) ([]notify.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notifs := make([]notify.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID == userID && !(unreadOnly && n.IsRead) {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *notifyRepository) MarkNotificationsRead(_ context.Context, userID string, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	selected := idSet(ids)
	for _, n := range repo.db.notifications {
		if n.UserID == userID && (len(selected) == 0 || selected[n.ID]) {
			n.IsRead = true
		}
	}
	return nil
}

func (repo *notifyRepository) CreateRecommendation(_ context.Context, r notify.Recommendation) (notify.Recommendation, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r.ID = newID(r.ID)
	cr := r
	repo.db.recommendations[r.ID] = &cr
	return r, nil
}

func (repo *notifyRepository) QueryRecommendations(_ context.Context, studentID string, unreadOnly bool) ([]notify.Recommendation, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := make([]notify.Recommendation, 0)
	for _, r := range repo.db.recommendations {
		if r.StudentID == studentID && !(unreadOnly && r.IsRead) {
			recs = append(recs, *r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *notifyRepository) MarkRecommendationsRead(_ context.Context, studentID string, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	selected := idSet(ids)
	for _, r := range repo.db.recommendations {
		if r.StudentID == studentID && (len(selected) == 0 || selected[r.ID]) {
			r.IsRead = true
		}
	}
	return nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
