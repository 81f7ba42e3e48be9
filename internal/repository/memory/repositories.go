package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type sessionRow struct {
	entity.Session
}

type chatRow struct {
	entity.Chat
}

type conversationRow struct {
	entity.Conversation
}

type chatBotRow struct {
	entity.ChatBot
}

// --- Sessions ---

type sessionRepository struct {
	store *store
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.Status == "" {
		session.Status = constant.StatusActive
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	r.store.sessions[session.Id.String()] = &sessionRow{Session: *session}
	return nil
}

func (r *sessionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if row, ok := r.store.sessions[id.String()]; ok {
		row.Status = constant.StatusDeleted
	}
	return nil
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	rows, err := r.FindAll(ctx, specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	q := buildQuery(specs...)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*entity.Session, 0)
	for _, row := range r.store.sessions {
		if q.id != "" && row.Id.String() != q.id {
			continue
		}
		if q.activeOnly && row.Status != constant.StatusActive {
			continue
		}
		copied := row.Session
		matches = append(matches, &copied)
	}

	matches = sortAndCap(matches, func(a, b *entity.Session) bool {
		if q.orderDesc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}, q.limit)
	return matches, nil
}

// --- Chats ---

type chatRepository struct {
	store *store
}

func (r *chatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if chat.Id == uuid.Nil {
		chat.Id = uuid.New()
	}
	if chat.Status == "" {
		chat.Status = constant.StatusActive
	}
	if chat.Title == "" {
		chat.Title = constant.DefaultChatTitle
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}

	r.store.chats[chat.Id.String()] = &chatRow{Chat: *chat}
	return nil
}

func (r *chatRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if row, ok := r.store.chats[id.String()]; ok {
		row.Status = constant.StatusDeleted
	}
	return nil
}

func (r *chatRepository) SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.store.chats {
		if row.SessionId == sessionId {
			row.Status = constant.StatusDeleted
		}
	}
	return nil
}

func (r *chatRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	rows, err := r.FindAll(ctx, specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *chatRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	q := buildQuery(specs...)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*entity.Chat, 0)
	for _, row := range r.store.chats {
		if q.id != "" && row.Id.String() != q.id {
			continue
		}
		if q.sessionId != "" && row.SessionId.String() != q.sessionId {
			continue
		}
		if q.activeOnly && row.Status != constant.StatusActive {
			continue
		}
		copied := row.Chat
		matches = append(matches, &copied)
	}

	matches = sortAndCap(matches, func(a, b *entity.Chat) bool {
		if q.orderDesc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}, q.limit)
	return matches, nil
}

// --- Conversations ---

type conversationRepository struct {
	store *store
}

func (r *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	// Per-chat lock keeps sequence numbers contiguous under concurrency,
	// matching the SQL advisory lock.
	lock := r.store.chatSequenceLock(conversation.ChatId.String())
	lock.Lock()
	defer lock.Unlock()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	next := 1
	for _, row := range r.store.conversations {
		if row.ChatId == conversation.ChatId && row.SequenceNumber >= next {
			next = row.SequenceNumber + 1
		}
	}

	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.Status == "" {
		conversation.Status = constant.StatusActive
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	conversation.SequenceNumber = next

	r.store.conversations[conversation.Id.String()] = &conversationRow{Conversation: *conversation}
	return nil
}

func (r *conversationRepository) AttachResponse(ctx context.Context, id uuid.UUID, response string) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.conversations[id.String()]
	if !ok || row.Status != constant.StatusActive {
		return nil, apperr.NotFound("conversation not found")
	}

	row.BotResponse = &response
	copied := row.Conversation
	return &copied, nil
}

func (r *conversationRepository) SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.store.conversations {
		if row.SessionId == sessionId {
			row.Status = constant.StatusDeleted
		}
	}
	return nil
}

func (r *conversationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	rows, err := r.FindAll(ctx, specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *conversationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	q := buildQuery(specs...)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*entity.Conversation, 0)
	for _, row := range r.store.conversations {
		if q.id != "" && row.Id.String() != q.id {
			continue
		}
		if q.sessionId != "" && row.SessionId.String() != q.sessionId {
			continue
		}
		if q.chatId != "" && row.ChatId.String() != q.chatId {
			continue
		}
		if q.activeOnly && row.Status != constant.StatusActive {
			continue
		}
		copied := row.Conversation
		matches = append(matches, &copied)
	}

	matches = sortAndCap(matches, func(a, b *entity.Conversation) bool {
		if q.orderDesc {
			return a.SequenceNumber > b.SequenceNumber
		}
		return a.SequenceNumber < b.SequenceNumber
	}, q.limit)
	return matches, nil
}

// --- ChatBots ---

type chatBotRepository struct {
	store *store
}

func (r *chatBotRepository) Create(ctx context.Context, chatbot *entity.ChatBot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if chatbot.Id == uuid.Nil {
		chatbot.Id = uuid.New()
	}
	if chatbot.Status == "" {
		chatbot.Status = constant.StatusActive
	}
	if chatbot.CreatedAt.IsZero() {
		chatbot.CreatedAt = time.Now()
	}

	r.store.chatbots[chatbot.Id.String()] = &chatBotRow{ChatBot: *chatbot}
	return nil
}

func (r *chatBotRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if row, ok := r.store.chatbots[id.String()]; ok {
		row.Status = constant.StatusDeleted
	}
	return nil
}

func (r *chatBotRepository) IncrementIngestionStats(ctx context.Context, id uuid.UUID, ingestedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.chatbots[id.String()]
	if !ok || row.Status != constant.StatusActive {
		return apperr.NotFound("chatbot not found")
	}

	row.DocumentCount++
	t := ingestedAt
	row.LastIngestedAt = &t
	return nil
}

func (r *chatBotRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatBot, error) {
	rows, err := r.FindAll(ctx, specs...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *chatBotRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatBot, error) {
	q := buildQuery(specs...)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*entity.ChatBot, 0)
	for _, row := range r.store.chatbots {
		if q.id != "" && row.Id.String() != q.id {
			continue
		}
		if q.activeOnly && row.Status != constant.StatusActive {
			continue
		}
		copied := row.ChatBot
		matches = append(matches, &copied)
	}

	matches = sortAndCap(matches, func(a, b *entity.ChatBot) bool {
		if q.orderDesc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}, q.limit)
	return matches, nil
}
