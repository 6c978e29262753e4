package logic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/briefing"
	"nmai-api/pkg/llm"
)

// EmitFunc writes one frame to the client. An error stops the stream.
type EmitFunc func(types.StreamEvent) error

type ChatStreamLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatStreamLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatStreamLogic {
	return &ChatStreamLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Stream answers one frame. Calculator replies arrive as a single done
// frame; model replies as delta frames followed by done. Model failures
// are reported as an error frame and do not close the socket.
func (l *ChatStreamLogic) Stream(req *types.StreamReq, emit EmitFunc) error {
	in := ChatInput{
		Prompt:    req.Prompt,
		SessionID: strings.TrimSpace(req.SessionID),
	}
	if len(req.History) > 0 {
		in.History = parseHistoryJSON(req.History)
	}
	turn := prepareTurn(l.ctx, l.svcCtx, in)

	if reply, ok := turn.dispatch(l.svcCtx); ok {
		countReply(routeStream, string(reply.Intent))
		persistTurn(l.ctx, l.svcCtx, in.SessionID, turn.prompt, reply.Text)
		return emit(types.StreamEvent{Type: types.StreamDone, Reply: reply.Text, Intent: string(reply.Intent)})
	}

	if l.svcCtx.LLM == nil {
		return emit(types.StreamEvent{Type: types.StreamError, Error: ErrModelUnavailable.Error()})
	}
	msgs, err := turn.messages(l.svcCtx, in)
	if err != nil {
		return emit(types.StreamEvent{Type: types.StreamError, Error: err.Error()})
	}
	deltas, err := l.svcCtx.LLM.ChatStream(l.ctx, &llm.ChatRequest{Messages: msgs})
	if err != nil {
		l.Errorf("chat stream: start: %v", err)
		return emit(types.StreamEvent{Type: types.StreamError, Error: err.Error()})
	}

	var sb strings.Builder
	for chunk := range deltas {
		if chunk.Err != nil {
			l.Errorf("chat stream: %v", chunk.Err)
			return emit(types.StreamEvent{Type: types.StreamError, Error: chunk.Err.Error()})
		}
		if chunk.Delta == "" {
			continue
		}
		sb.WriteString(chunk.Delta)
		if err := emit(types.StreamEvent{Type: types.StreamDelta, Delta: chunk.Delta}); err != nil {
			return err
		}
	}

	reply := modelReply(sb.String())
	countReply(routeStream, intentLLM)
	persistTurn(l.ctx, l.svcCtx, in.SessionID, turn.prompt, reply)
	return emit(types.StreamEvent{Type: types.StreamDone, Reply: reply, Intent: intentLLM})
}

// parseHistoryJSON accepts the history either as a JSON array or as a
// string holding one, the way the form field carries it.
func parseHistoryJSON(raw json.RawMessage) []briefing.Turn {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return briefing.ParseHistory(encoded)
	}
	return briefing.ParseHistory(string(raw))
}
