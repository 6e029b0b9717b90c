package services

import (
	"fmt"
	"log"
	"time"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"

	"gorm.io/gorm"
)

// Notification template keys.
const (
	TemplateReviewRequest       = "review_request"
	TemplateReviewResponse      = "review_response"
	TemplateReviewSubmitted     = "review_submitted"
	TemplateReviewCancelled     = "review_cancelled"
	TemplateEditorDecision      = "editor_decision"
	TemplateRevisionReceived    = "revision_received"
	TemplateSubmissionPublished = "submission_published"
)

// NotificationService writes notification rows and sends e-mail. Everything
// here is best-effort and runs after the core transaction commits: failures
// are logged, never propagated.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify records an in-app notification for one user and mails them when an
// address is on file.
func (s *NotificationService) Notify(userID int, submissionID *int, templateKey, title, message, notifType string) {
	now := time.Now()
	key := templateKey
	notification := models.Notification{
		UserID:      uint(userID),
		Title:       title,
		Message:     message,
		Type:        notifType,
		TemplateKey: &key,
		CreateAt:    now,
	}
	if submissionID != nil {
		related := uint(*submissionID)
		notification.RelatedSubmissionID = &related
	}

	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for user %d: %v", userID, err)
	}

	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		log.Printf("Warning: notification recipient %d not found: %v", userID, err)
		return
	}
	if user.Email == "" {
		return
	}

	body := fmt.Sprintf("<p>Dear %s,</p><p>%s</p>", user.FullName(), message)
	if err := config.SendMail([]string{user.Email}, title, body); err != nil {
		log.Printf("Warning: failed to send mail to %s: %v", user.Email, err)
	}
}

// NotifyEditors fans a notification out to every active editor.
func (s *NotificationService) NotifyEditors(submissionID *int, templateKey, title, message string) {
	var editors []models.User
	if err := s.db.Where("role_id = ? AND delete_at IS NULL", models.RoleEditor).Find(&editors).Error; err != nil {
		log.Printf("Warning: failed to load editors for notification: %v", err)
		return
	}
	for _, editor := range editors {
		s.Notify(editor.UserID, submissionID, templateKey, title, message, "info")
	}
}
