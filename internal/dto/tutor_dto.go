package dto

import "github.com/codecoach/codecoach-api/internal/models"

// TutorChatRequest is the payload for one tutor exchange. The message arrives
// base64 encoded like the rest of the code-adjacent payloads. A missing
// conversation id starts a new conversation.
type TutorChatRequest struct {
	ConversationID *uint  `json:"conversationId"`
	ProblemID      *uint  `json:"problemId"`
	EncodedMessage string `json:"message" validate:"required,base64"`
}

// TutorChatResponse returns the assistant reply for the exchange.
type TutorChatResponse struct {
	ConversationID uint   `json:"conversationId"`
	Message        string `json:"message"`
	TotalTokens    int    `json:"total_tokens"`
}

// ConversationSummary lists one stored conversation.
type ConversationSummary struct {
	ID          uint   `json:"id"`
	ProblemID   *uint  `json:"problem_id,omitempty"`
	Title       string `json:"title"`
	TotalTokens int    `json:"total_tokens"`
}

// NewConversationSummarySlice converts conversation models into DTOs.
func NewConversationSummarySlice(conversations []models.AIConversation) []ConversationSummary {
	result := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		result = append(result, ConversationSummary{
			ID:          conversation.ID,
			ProblemID:   conversation.ProblemID,
			Title:       conversation.Title,
			TotalTokens: conversation.TotalTokens,
		})
	}
	return result
}
