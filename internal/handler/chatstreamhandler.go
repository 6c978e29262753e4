package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
	"nmai-api/internal/types"
)

const (
	streamWriteWait = 10 * time.Second
	maxStreamFrame  = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatStreamHandler serves one websocket per chat window. Every client
// frame is answered before the next one is read.
func ChatStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logx.WithContext(r.Context())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("chat stream: upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxStreamFrame)

		emit := func(ev types.StreamEvent) error {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			return conn.WriteJSON(ev)
		}
		l := logic.NewChatStreamLogic(r.Context(), svcCtx)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Errorf("chat stream: read: %v", err)
				}
				return
			}
			var req types.StreamReq
			if err := json.Unmarshal(data, &req); err != nil {
				if err := emit(types.StreamEvent{Type: types.StreamError, Error: "invalid frame: " + err.Error()}); err != nil {
					return
				}
				continue
			}
			if err := l.Stream(&req, emit); err != nil {
				logger.Errorf("chat stream: write: %v", err)
				return
			}
		}
	}
}
