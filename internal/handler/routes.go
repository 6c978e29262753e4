package handler

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest"

	"nmai-api/internal/svc"
)

const (
	// chatTimeout covers feed fetches plus one model call.
	chatTimeout = 3 * time.Minute
	// streamTimeout bounds one websocket connection.
	streamTimeout = 30 * time.Minute
	// formOverhead is the multipart envelope allowed on top of the file.
	formOverhead = 1 << 20
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/chatgpt",
				Handler: ChatGPTHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/nm-ai",
				Handler: NMAIHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
		rest.WithTimeout(chatTimeout),
		rest.WithMaxBytes(serverCtx.Config.MaxUploadBytes+formOverhead),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/chat/stream",
				Handler: ChatStreamHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
		rest.WithTimeout(streamTimeout),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/sessions",
				Handler: CreateSessionHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/sessions/:sessionId/messages",
				Handler: ListMessagesHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/sessions/:sessionId/messages",
				Handler: SaveMessageHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/sessions/:sessionId/messages",
				Handler: ClearMessagesHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
