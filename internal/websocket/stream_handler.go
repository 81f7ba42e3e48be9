package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/pkg/llm"
)

// StreamHandler answers chat requests over a websocket, one request per
// message. Chunks go out as they arrive; the final chunk carries
// is_final=true and the turn is persisted right after it.
type StreamHandler struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewStreamHandler(chatService service.IChatService, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		chatService: chatService,
		logger:      log,
	}
}

func (h *StreamHandler) Serve(conn *websocket.Conn) {
	defer conn.Close()

	// The read pump is the only reader. When it sees the connection drop it
	// cancels ctx, so a disconnect aborts an in-flight generation instead of
	// waiting for the next write to fail.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan []byte)
	go func() {
		defer cancel()
		defer close(requests)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case requests <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	for payload := range requests {
		var req dto.SendChatRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			h.writeError(conn, "invalid request payload")
			continue
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			h.writeError(conn, err.Error())
			continue
		}

		send := func(chunk llm.StreamChunk) error {
			return conn.WriteJSON(chunk)
		}

		if _, err := h.chatService.AnswerStream(ctx, &req, send); err != nil {
			h.logger.Warn("websocket", "streamed answer failed", map[string]interface{}{
				"chatbot_id": req.ChatbotId.String(),
				"error":      err.Error(),
			})
			if ctx.Err() != nil {
				return
			}
			h.writeError(conn, err.Error())
		}
	}
}

func (h *StreamHandler) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(serverutils.ErrorResponse(message))
}
