package unitofwork

import (
	"context"

	"rag-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ChatRepository() contract.ChatRepository
	ConversationRepository() contract.ConversationRepository
	ChatBotRepository() contract.ChatBotRepository
}
