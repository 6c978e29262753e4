package logic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/chatstore"
)

// ErrHistoryDisabled is returned by session operations without a store.
var ErrHistoryDisabled = errors.New("logic: chat history disabled")

type SessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SessionLogic {
	return &SessionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// CreateSession hands out a fresh session id. Nothing is stored until the
// first message arrives.
func (l *SessionLogic) CreateSession() (*types.CreateSessionResp, error) {
	return &types.CreateSessionResp{SessionID: uuid.NewString()}, nil
}

func (l *SessionLogic) ListMessages(req *types.SessionReq) (*types.MessagesResp, error) {
	if l.svcCtx.History == nil {
		return nil, ErrHistoryDisabled
	}
	msgs, err := l.svcCtx.History.Load(l.ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	resp := &types.MessagesResp{SessionID: req.SessionID, Messages: make([]types.MessageItem, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, messageItem(m))
	}
	return resp, nil
}

func (l *SessionLogic) SaveMessage(req *types.SaveMessageReq) (*types.MessageItem, error) {
	if l.svcCtx.History == nil {
		return nil, ErrHistoryDisabled
	}
	msg := &chatstore.Message{
		SessionID: req.SessionID,
		Role:      chatstore.Role(req.Role),
		Text:      req.Text,
	}
	if err := l.svcCtx.History.Save(l.ctx, msg); err != nil {
		return nil, err
	}
	item := messageItem(*msg)
	return &item, nil
}

func (l *SessionLogic) ClearMessages(req *types.SessionReq) error {
	if l.svcCtx.History == nil {
		return ErrHistoryDisabled
	}
	if err := l.svcCtx.History.Clear(l.ctx, req.SessionID); err != nil {
		return err
	}
	l.Infow("chat history cleared", logx.Field("session", req.SessionID))
	return nil
}

func messageItem(m chatstore.Message) types.MessageItem {
	return types.MessageItem{
		ID:        m.ID,
		Role:      string(m.Role),
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
