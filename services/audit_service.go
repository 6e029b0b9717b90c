package services

import (
	"encoding/json"
	"log"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/gorm"
)

// AuditEntry captures one actor action for the audit trail.
type AuditEntry struct {
	UserID       int
	Action       string
	EntityType   string
	EntityID     int
	EntityNumber string
	Values       map[string]interface{}
	Description  string
	IPAddress    string
	UserAgent    string
}

// AuditService appends audit_logs rows. Best-effort: audit failure is logged
// and swallowed so it can never block a committed workflow transition.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(entry AuditEntry) {
	audit := models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		IPAddress:  entry.IPAddress,
		CreateAt:   time.Now(),
	}
	if entry.EntityID != 0 {
		id := entry.EntityID
		audit.EntityID = &id
	}
	if entry.EntityNumber != "" {
		number := entry.EntityNumber
		audit.EntityNumber = &number
	}
	if entry.Description != "" {
		description := entry.Description
		audit.Description = &description
	}
	if entry.UserAgent != "" {
		agent := entry.UserAgent
		audit.UserAgent = &agent
	}
	if len(entry.Values) > 0 {
		serialized, err := json.Marshal(entry.Values)
		if err == nil {
			values := string(serialized)
			audit.NewValues = &values
		}
	}

	if err := s.db.Create(&audit).Error; err != nil {
		log.Printf("Warning: failed to write audit log for %s/%d: %v", entry.EntityType, entry.EntityID, err)
	}
}
