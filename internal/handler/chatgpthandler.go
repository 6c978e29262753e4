package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
)

func ChatGPTHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseChatRequest(r, svcCtx)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewChatGPTLogic(r.Context(), svcCtx)
		resp, err := l.ChatGPT(in)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("API /chatgpt error: %v", err)
			writeChatError(r.Context(), w, "chatgpt", err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
