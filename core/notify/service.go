package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/trezcool/darslik/core"
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotifications(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
		MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error

		CreateRecommendation(ctx context.Context, r Recommendation) (Recommendation, error)
		QueryRecommendations(ctx context.Context, studentID string, unreadOnly bool) ([]Recommendation, error)
		MarkRecommendationsRead(ctx context.Context, studentID string, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// NotifyTeacher records a quiz notification for the teacher, and emails them when the student is struggling.
func (svc *Service) NotifyTeacher(ctx context.Context, teacherID string, o QuizOutcome) (Notification, error) {
	typ := TypeQuizCompleted
	if o.Struggling() {
		typ = TypeStudentStruggling
	}
	msg := fmt.Sprintf("Result: %d/%d. ", o.Score, o.MaxScore)
	if len(o.WeakTopics) > 0 {
		msg += "Weak topics: " + strings.Join(o.WeakTopics, ", ")
	} else {
		msg += "Great result!"
	}

	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    teacherID,
		Type:      typ,
		Title:     fmt.Sprintf("%s finished the test", o.StudentName),
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Notification{}, err
	}

	if typ == TypeStudentStruggling && o.TeacherEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: o.TeacherName, Address: o.TeacherEmail}},
			Subject:      n.Title,
			TemplateName: "student_struggling",
			TemplateData: o,
		})
	}
	return n, nil
}

// NotifyEnrollment tells the teacher a student joined their course.
func (svc *Service) NotifyEnrollment(ctx context.Context, teacherID, studentName, courseTitle string) (Notification, error) {
	return svc.repo.CreateNotification(ctx, Notification{
		UserID:    teacherID,
		Type:      TypeCourseEnrolled,
		Title:     fmt.Sprintf("%s enrolled", studentName),
		Message:   fmt.Sprintf("%s enrolled in %q.", studentName, courseTitle),
		CreatedAt: time.Now().UTC(),
	})
}

// RecommendWeakTopics records a weak_topic recommendation for the student.
func (svc *Service) RecommendWeakTopics(ctx context.Context, studentID, lessonID string, weakTopics []string) (Recommendation, error) {
	return svc.repo.CreateRecommendation(ctx, Recommendation{
		StudentID: studentID,
		LessonID:  lessonID,
		Type:      RecommendWeakTopic,
		Content:   "Review these topics: " + strings.Join(weakTopics, ", "),
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, userID, unreadOnly)
}

func (svc *Service) MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error {
	return svc.repo.MarkNotificationsRead(ctx, userID, ids...)
}

func (svc *Service) Recommendations(ctx context.Context, studentID string, unreadOnly bool) ([]Recommendation, error) {
	return svc.repo.QueryRecommendations(ctx, studentID, unreadOnly)
}

func (svc *Service) MarkRecommendationsRead(ctx context.Context, studentID string, ids ...string) error {
	return svc.repo.MarkRecommendationsRead(ctx, studentID, ids...)
}
