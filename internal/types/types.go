package types

import "encoding/json"

// ChatReq is the multipart form of the chat routes. The file part is read
// by the handler directly.
type ChatReq struct {
	Prompt    string `form:"prompt,optional"`
	History   string `form:"history,optional"`
	SessionID string `form:"sessionId,optional"`
}

type ChatResp struct {
	Reply     string  `json:"reply"`
	ImagePath *string `json:"imagePath"`
}

type ErrorResp struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// StreamReq is one client frame on the stream socket.
type StreamReq struct {
	Prompt    string          `json:"prompt"`
	History   json.RawMessage `json:"history,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// Stream frame types.
const (
	StreamDelta = "delta"
	StreamDone  = "done"
	StreamError = "error"
)

// StreamEvent is one server frame on the stream socket.
type StreamEvent struct {
	Type   string `json:"type"`
	Delta  string `json:"delta,omitempty"`
	Reply  string `json:"reply,omitempty"`
	Intent string `json:"intent,omitempty"`
	Error  string `json:"error,omitempty"`
}

type CreateSessionResp struct {
	SessionID string `json:"sessionId"`
}

type SessionReq struct {
	SessionID string `path:"sessionId"`
}

type SaveMessageReq struct {
	SessionID string `path:"sessionId"`
	Role      string `json:"role"`
	Text      string `json:"text"`
}

type MessageItem struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type MessagesResp struct {
	SessionID string        `json:"sessionId"`
	Messages  []MessageItem `json:"messages"`
}
