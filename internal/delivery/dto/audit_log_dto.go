package dto

import (
	"time"

	"clinic-desk/internal/domain/entity"
)

// AuditLogResponse represents one audit trail entry
type AuditLogResponse struct {
	ID        int64       `json:"id"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuditLogListResponse wraps an audit trail listing
type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
