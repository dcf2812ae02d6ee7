package dto

import "github.com/codecoach/codecoach-api/internal/models"

// APIKeyCreateRequest is the payload for storing a new third-party credential.
type APIKeyCreateRequest struct {
	KeyName  string `json:"keyName" validate:"required,min=1,max=128"`
	KeyValue string `json:"keyValue" validate:"required,min=1,max=255"`
}

// APIKeyUpdateRequest is the payload for renaming or replacing a credential.
type APIKeyUpdateRequest struct {
	KeyName  string `json:"keyName" validate:"required,min=1,max=128"`
	KeyValue string `json:"keyValue" validate:"required,min=1,max=255"`
}

// APIKeyResponse presents a stored key without exposing its value.
type APIKeyResponse struct {
	ID         uint   `json:"id"`
	KeyName    string `json:"key_name"`
	IsActive   bool   `json:"is_active"`
	UsageCount int    `json:"usage_count"`
}

// NewAPIKeyResponse builds a response DTO from a model.
func NewAPIKeyResponse(key models.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		KeyName:    key.KeyName,
		IsActive:   key.IsActive,
		UsageCount: key.UsageCount,
	}
}

// NewAPIKeyResponseSlice converts key models into DTOs.
func NewAPIKeyResponseSlice(keys []models.APIKey) []APIKeyResponse {
	result := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		result = append(result, NewAPIKeyResponse(key))
	}
	return result
}
