package backend

import (
	"context"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

type conversationPayload struct {
	ChatID    string `json:"chat_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ChatUsers []struct {
		UserID string `json:"user_id"`
	} `json:"chat_users"`
}

func (p conversationPayload) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:           p.ChatID,
		Name:         p.Name,
		Kind:         domain.ConversationKind(p.Type),
		Participants: len(p.ChatUsers),
	}
}

// CheckUserConversation implements ports.ConversationAPI.
func (c *Client) CheckUserConversation(ctx context.Context, credential, userID string) (*domain.Conversation, error) {
	var payload conversationPayload
	if err := c.get(ctx, "/chat/check/"+userID, credential, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// CreateConversation implements ports.ConversationAPI.
func (c *Client) CreateConversation(ctx context.Context, credential, name string, kind domain.ConversationKind) (*domain.Conversation, error) {
	body := map[string]string{
		"name": name,
		"type": string(kind),
	}
	// Creation responses are wrapped one level deeper than lookups.
	var payload struct {
		Data struct {
			Chat conversationPayload `json:"chat"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "/chat/create", credential, body, &payload); err != nil {
		return nil, err
	}
	return payload.Data.Chat.toDomain(), nil
}

// ConversationByID implements ports.ConversationAPI.
func (c *Client) ConversationByID(ctx context.Context, credential, conversationID string) (*domain.ConversationAccess, error) {
	var payload struct {
		ChatID   string `json:"chat_id"`
		ChatName string `json:"chat_name"`
		UserID   string `json:"user_id"`
		UserRole string `json:"user_role"`
	}
	if err := c.get(ctx, "/chat/"+conversationID, credential, &payload); err != nil {
		return nil, err
	}
	return &domain.ConversationAccess{ParticipantID: payload.UserID, DisplayName: payload.ChatName}, nil
}
