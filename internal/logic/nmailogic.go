package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/briefing"
	"nmai-api/pkg/llm"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

type NMAILogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewNMAILogic(ctx context.Context, svcCtx *svc.ServiceContext) *NMAILogic {
	return &NMAILogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// NMAI forwards the conversation to the self-hosted model with today's
// quotes and calendar as raw JSON context. Calculators are not consulted.
func (l *NMAILogic) NMAI(in ChatInput) (*types.ChatResp, error) {
	if l.svcCtx.Ollama == nil {
		return nil, ErrModelUnavailable
	}
	now := l.svcCtx.Now()
	images := in.images()
	prompt := briefing.UserPrompt(in.Prompt, len(images) > 0)
	today := textparse.FormatISODate(now.In(l.svcCtx.Config.Location()))

	snap := market.FetchAll(l.ctx, l.svcCtx.Market, today)
	msgs := briefing.RawContext(now, snap.Quotes, snap.Calendar)
	msgs = append(msgs, briefing.HistoryMessages(sessionHistory(l.ctx, l.svcCtx, in))...)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: briefing.UserText(prompt, in.fileText()),
		Images:  images,
	})

	resp, err := l.svcCtx.Ollama.Chat(l.ctx, &llm.ChatRequest{Messages: msgs})
	if err != nil {
		return nil, err
	}
	reply := modelReply(resp.Content)
	countReply(routeNMAI, intentLLM)
	persistTurn(l.ctx, l.svcCtx, in.SessionID, prompt, reply)
	return chatResp(reply), nil
}
