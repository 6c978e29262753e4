package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
	"nmai-api/internal/types"
	"nmai-api/pkg/llm"
	"nmai-api/pkg/upload"
)

const (
	errInternal = "Internal server error"
	errOllama   = "Ollama error"
)

// parseChatRequest decodes the multipart chat form and its optional file.
func parseChatRequest(r *http.Request, svcCtx *svc.ServiceContext) (logic.ChatInput, error) {
	var req types.ChatReq
	if err := httpx.Parse(r, &req); err != nil {
		return logic.ChatInput{}, err
	}
	att, err := readAttachment(r, svcCtx.Config.MaxUploadBytes)
	if err != nil {
		return logic.ChatInput{}, err
	}
	return logic.NewChatInput(&req, att), nil
}

func readAttachment(r *http.Request, maxBytes int64) (*upload.Attachment, error) {
	file, fh, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = file.Close()

	data, err := upload.ReadFile(fh, maxBytes)
	if err != nil {
		return nil, err
	}
	return upload.Extract(fh.Filename, fh.Header.Get("Content-Type"), data)
}

// writeChatError answers a failed model call with a 500 JSON body. The
// nm-ai route surfaces the Ollama response body as detail.
func writeChatError(ctx context.Context, w http.ResponseWriter, route string, err error) {
	resp := types.ErrorResp{Error: errInternal, Detail: err.Error()}
	if route == "nm-ai" {
		resp.Detail = ""
		var status *llm.StatusError
		if errors.As(err, &status) {
			resp = types.ErrorResp{Error: errOllama, Detail: status.Body}
		}
	}
	httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, resp)
}
