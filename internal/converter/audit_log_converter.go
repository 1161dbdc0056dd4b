package converter

import (
	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
)

// AuditLogsToResponses converts a slice of AuditLog entities, preserving order
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, dto.AuditLogResponse{
			ID:        log.ID,
			Action:    log.Action,
			Metadata:  log.Metadata,
			CreatedAt: log.CreatedAt,
		})
	}
	return responses
}
