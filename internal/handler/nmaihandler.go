package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
)

func NMAIHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseChatRequest(r, svcCtx)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewNMAILogic(r.Context(), svcCtx)
		resp, err := l.NMAI(in)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("API /nm-ai error: %v", err)
			writeChatError(r.Context(), w, "nm-ai", err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
