package logic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/briefing"
	"nmai-api/pkg/chatstore"
	"nmai-api/pkg/dispatch"
	"nmai-api/pkg/llm"
	"nmai-api/pkg/market"
	"nmai-api/pkg/upload"
)

// ErrModelUnavailable is returned when a route's model is not configured.
var ErrModelUnavailable = errors.New("logic: model not configured")

// ChatInput is a decoded chat request.
type ChatInput struct {
	Prompt     string
	History    []briefing.Turn
	Attachment *upload.Attachment
	SessionID  string
}

// NewChatInput decodes the form fields of a chat route.
func NewChatInput(req *types.ChatReq, att *upload.Attachment) ChatInput {
	return ChatInput{
		Prompt:     req.Prompt,
		History:    briefing.ParseHistory(req.History),
		Attachment: att,
		SessionID:  strings.TrimSpace(req.SessionID),
	}
}

func (in ChatInput) images() []llm.Image {
	if in.Attachment == nil || in.Attachment.Image == nil {
		return nil
	}
	return []llm.Image{*in.Attachment.Image}
}

func (in ChatInput) fileText() string {
	if in.Attachment == nil {
		return ""
	}
	return in.Attachment.Text
}

// chatTurn is the per-request state shared by the model routes.
type chatTurn struct {
	prompt  string
	now     time.Time
	query   briefing.Query
	snap    market.Snapshot
	digests briefing.Digests
	history []briefing.Turn
}

// prepareTurn resolves the prompt, fetches every feed and digests them.
func prepareTurn(ctx context.Context, svcCtx *svc.ServiceContext, in ChatInput) chatTurn {
	now := svcCtx.Now()
	t := chatTurn{
		prompt:  briefing.UserPrompt(in.Prompt, len(in.images()) > 0),
		now:     now,
		history: sessionHistory(ctx, svcCtx, in),
	}
	t.query = svcCtx.Builder.Query(t.prompt, now)
	t.snap = market.FetchAll(ctx, svcCtx.Market, t.query.CalendarDate)
	t.digests = svcCtx.Builder.Digest(t.query, t.snap)
	return t
}

func (t chatTurn) dispatch(svcCtx *svc.ServiceContext) (dispatch.Reply, bool) {
	in := dispatch.Input{
		Text:     t.prompt,
		Now:      t.now,
		Quotes:   t.snap.QuoteRows(),
		Calendar: t.digests.Calendar,
	}
	if t.snap.Quotes != nil {
		in.QuotesUpdatedAt = t.snap.Quotes.UpdatedAt
	}
	return svcCtx.Dispatcher.Dispatch(in)
}

func (t chatTurn) messages(svcCtx *svc.ServiceContext, in ChatInput) ([]llm.Message, error) {
	return svcCtx.Builder.Messages(briefing.Context{
		Query:    t.query,
		Digests:  t.digests,
		History:  t.history,
		UserText: briefing.UserText(t.prompt, in.fileText()),
		Images:   in.images(),
	})
}

// sessionHistory prefers the history the client sent. Without one, a known
// session replays its stored transcript.
func sessionHistory(ctx context.Context, svcCtx *svc.ServiceContext, in ChatInput) []briefing.Turn {
	if len(in.History) > 0 || in.SessionID == "" || svcCtx.History == nil {
		return in.History
	}
	stored, err := svcCtx.History.Load(ctx, in.SessionID)
	if err != nil {
		logx.WithContext(ctx).Errorf("chat history: load session=%s: %v", in.SessionID, err)
		return nil
	}
	turns := make([]briefing.Turn, 0, len(stored))
	for _, m := range stored {
		turns = append(turns, briefing.Turn{Role: string(m.Role), Content: m.Text})
	}
	return briefing.TrimHistory(turns)
}

// persistTurn stores the exchange when the request names a session.
// Failures are logged; the reply is still returned.
func persistTurn(ctx context.Context, svcCtx *svc.ServiceContext, sessionID, prompt, reply string) {
	if sessionID == "" || svcCtx.History == nil {
		return
	}
	logger := logx.WithContext(ctx)
	for _, msg := range []*chatstore.Message{
		{SessionID: sessionID, Role: chatstore.RoleUser, Text: prompt},
		{SessionID: sessionID, Role: chatstore.RoleAI, Text: reply},
	} {
		if err := svcCtx.History.Save(ctx, msg); err != nil {
			logger.Errorw("chat history: save failed",
				logx.Field("session", sessionID),
				logx.Field("role", string(msg.Role)),
				logx.Field("err", err.Error()))
			return
		}
	}
}

func chatResp(reply string) *types.ChatResp {
	return &types.ChatResp{Reply: reply}
}

func modelReply(content string) string {
	if strings.TrimSpace(content) == "" {
		return llm.NoReply
	}
	return content
}
