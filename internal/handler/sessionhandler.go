package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/chatstore"
)

func CreateSessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.CreateSession()
		if err != nil {
			writeSessionError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func ListMessagesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SessionReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.ListMessages(&req)
		if err != nil {
			writeSessionError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func SaveMessageHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SaveMessageReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.SaveMessage(&req)
		if err != nil {
			writeSessionError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func ClearMessagesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SessionReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSessionLogic(r.Context(), svcCtx)
		if err := l.ClearMessages(&req); err != nil {
			writeSessionError(r.Context(), w, err)
			return
		}
		httpx.Ok(w)
	}
}

func writeSessionError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatstore.ErrSessionRequired), errors.Is(err, chatstore.ErrInvalidRole):
		httpx.ErrorCtx(ctx, w, err)
	case errors.Is(err, logic.ErrHistoryDisabled):
		httpx.WriteJsonCtx(ctx, w, http.StatusServiceUnavailable, types.ErrorResp{Error: err.Error()})
	default:
		httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, types.ErrorResp{Error: errInternal, Detail: err.Error()})
	}
}
