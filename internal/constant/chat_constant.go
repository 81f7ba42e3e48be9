package constant

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

const DefaultChatTitle = "New Chat"

const (
	// Chunking: sliding word window with overlap.
	ChunkWindowSize = 200
	ChunkOverlap    = 50

	// Retrieval and prompt assembly bounds.
	SearchTopK       = 5
	HistoryTurnLimit = 5
)
