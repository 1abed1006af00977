package websocket

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

const (
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeSearch            = "search"
	MessageTypeSearchResults     = "search_results"
	MessageTypeJoinConversation  = "join_conversation"
	MessageTypeLeaveConversation = "leave_conversation"
	MessageTypeSendMessage       = "send_message"
	MessageTypeMessage           = "message"
	MessageTypeJoined            = "joined"
	MessageTypeError             = "error"
)

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
}

type outbound struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

type SearchData struct {
	Query string `json:"query"`
}

type SendMessageData struct {
	Content string `json:"content"`
}

type JoinedData struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []*entity.Message `json:"messages"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleClientMessage dispatches one inbound frame.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg WSMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		client.sendError(errors.BadRequest("Invalid message format", err))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		client.push(MessageTypePong, "", map[string]string{"status": "alive"})

	case MessageTypeSearch:
		var data SearchData
		if err := decodeData(msg, &data); err != nil {
			client.sendError(err)
			return
		}
		client.debouncer.Push(data.Query)

	case MessageTypeJoinConversation:
		m.handleJoinConversation(client, msg)

	case MessageTypeLeaveConversation:
		client.feed.Leave()

	case MessageTypeSendMessage:
		m.handleSendMessage(client, msg)

	default:
		logger.Debug("WebSocket: unknown message type %q", msg.Type)
		client.sendError(errors.BadRequest("Unknown message type", nil))
	}
}

func (m *Manager) handleJoinConversation(client *Client, msg WSMessage) {
	if msg.ConversationID == "" {
		client.sendError(errors.Validation("conversation_id is required"))
		return
	}

	history, err := m.chat.LoadMessages(client.ctx, client.Identity, msg.ConversationID)
	if err != nil {
		client.sendError(err)
		return
	}
	if err := client.feed.Open(client.ctx, msg.ConversationID, history); err != nil {
		client.sendError(err)
		return
	}

	client.push(MessageTypeJoined, msg.ConversationID, JoinedData{
		ConversationID: msg.ConversationID,
		Messages:       client.feed.Messages(),
	})
}

// handleSendMessage stores the message and echoes it to the sender. When the
// conversation is the joined one, the copy arriving through the subscription
// is folded away.
func (m *Manager) handleSendMessage(client *Client, msg WSMessage) {
	conversationID := msg.ConversationID
	if conversationID == "" {
		conversationID = client.feed.ConversationID()
	}
	if conversationID == "" {
		client.sendError(errors.Validation("Join a conversation before sending messages"))
		return
	}

	var data SendMessageData
	if err := decodeData(msg, &data); err != nil {
		client.sendError(err)
		return
	}

	sent, err := m.chat.SendMessage(client.ctx, client.Identity, conversationID, data.Content)
	if err != nil {
		client.sendError(err)
		return
	}
	if conversationID != client.feed.ConversationID() || client.feed.Fold(sent) {
		client.push(MessageTypeMessage, conversationID, sent)
	}
}

func decodeData(msg WSMessage, v interface{}) error {
	if len(msg.Data) == 0 {
		return errors.Validation("data is required")
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return errors.BadRequest("Invalid "+msg.Type+" data", err)
	}
	return nil
}

// push queues a frame for the writer. Frames for a closing socket are dropped.
func (c *Client) push(kind, conversationID string, data interface{}) {
	payload, err := json.Marshal(outbound{
		Type:           kind,
		ConversationID: conversationID,
		Data:           data,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s frame: %v", kind, err)
		return
	}

	select {
	case c.Send <- payload:
	case <-c.ctx.Done():
	}
}

func (c *Client) sendError(err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		logger.Error("WebSocket: %v", err)
		appErr = errors.Internal("An unexpected error occurred", err)
	}
	c.push(MessageTypeError, "", ErrorData{Code: appErr.Code, Message: appErr.Message})
}
