package memory

import (
	"context"
	"sort"
	"sync"

	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
)

// Factory is an in-memory RepositoryFactory. It backs service tests that
// need the full repository contracts without a database.
type Factory struct {
	store *store
}

func NewFactory() *Factory {
	return &Factory{store: newStore()}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

var _ unitofwork.RepositoryFactory = (*Factory)(nil)

// unitOfWork satisfies the transactional contract without transactions; the
// store's locks keep individual operations consistent.
type unitOfWork struct {
	store *store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) SessionRepository() contract.SessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *unitOfWork) ChatRepository() contract.ChatRepository {
	return &chatRepository{store: u.store}
}

func (u *unitOfWork) ConversationRepository() contract.ConversationRepository {
	return &conversationRepository{store: u.store}
}

func (u *unitOfWork) ChatBotRepository() contract.ChatBotRepository {
	return &chatBotRepository{store: u.store}
}

// store holds all rows behind one mutex plus per-chat sequence locks.
type store struct {
	mu            sync.RWMutex
	sessions      map[string]*sessionRow
	chats         map[string]*chatRow
	conversations map[string]*conversationRow
	chatbots      map[string]*chatBotRow

	seqMu    sync.Mutex
	seqLocks map[string]*sync.Mutex
}

func newStore() *store {
	return &store{
		sessions:      make(map[string]*sessionRow),
		chats:         make(map[string]*chatRow),
		conversations: make(map[string]*conversationRow),
		chatbots:      make(map[string]*chatBotRow),
		seqLocks:      make(map[string]*sync.Mutex),
	}
}

// chatSequenceLock returns the mutex serializing sequence assignment for one
// chat, mirroring the advisory lock the SQL implementation takes.
func (s *store) chatSequenceLock(chatId string) *sync.Mutex {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	lock, ok := s.seqLocks[chatId]
	if !ok {
		lock = &sync.Mutex{}
		s.seqLocks[chatId] = lock
	}
	return lock
}

// query captures the subset of specifications the memory repositories
// understand. Unknown specification types are ignored.
type query struct {
	id         string
	sessionId  string
	chatId     string
	activeOnly bool
	orderBy    string
	orderDesc  bool
	limit      int
}

func buildQuery(specs ...specification.Specification) query {
	q := query{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			q.id = s.ID.String()
		case specification.BySessionID:
			q.sessionId = s.SessionID.String()
		case specification.ByChatID:
			q.chatId = s.ChatID.String()
		case specification.ActiveOnly:
			q.activeOnly = true
		case specification.OrderBy:
			q.orderBy = s.Field
			q.orderDesc = s.Desc
		case specification.Limit:
			q.limit = s.N
		}
	}
	return q
}

func sortAndCap[T any](rows []T, less func(a, b T) bool, limit int) []T {
	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
