package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/llm"
)

type ChatGPTLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatGPTLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatGPTLogic {
	return &ChatGPTLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ChatGPT answers from a calculator when one commits, otherwise from the
// hosted model with the full market briefing as system context.
func (l *ChatGPTLogic) ChatGPT(in ChatInput) (*types.ChatResp, error) {
	turn := prepareTurn(l.ctx, l.svcCtx, in)

	if reply, ok := turn.dispatch(l.svcCtx); ok {
		l.Infow("chat answered by calculator",
			logx.Field("route", routeChatGPT),
			logx.Field("intent", string(reply.Intent)))
		countReply(routeChatGPT, string(reply.Intent))
		persistTurn(l.ctx, l.svcCtx, in.SessionID, turn.prompt, reply.Text)
		return chatResp(reply.Text), nil
	}

	if l.svcCtx.LLM == nil {
		return nil, ErrModelUnavailable
	}
	msgs, err := turn.messages(l.svcCtx, in)
	if err != nil {
		return nil, err
	}
	resp, err := l.svcCtx.LLM.Chat(l.ctx, &llm.ChatRequest{Messages: msgs})
	if err != nil {
		return nil, err
	}

	reply := modelReply(resp.Content)
	countReply(routeChatGPT, intentLLM)
	persistTurn(l.ctx, l.svcCtx, in.SessionID, turn.prompt, reply)
	return chatResp(reply), nil
}
