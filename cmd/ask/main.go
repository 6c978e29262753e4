// Command ask runs one prompt through the chat pipeline from the terminal:
// feeds are fetched, calculators consulted, and the hosted model asked
// only when no calculator answers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/config"
	"nmai-api/internal/logic"
	"nmai-api/internal/svc"
	"nmai-api/pkg/upload"
)

func main() {
	var (
		configPath = flag.String("f", "etc/nmai.yaml", "path to the service config")
		filePath   = flag.String("file", "", "optional attachment (image, csv, txt, xlsx)")
		offline    = flag.Bool("offline", false, "answer from calculators only, never call the model")
		verbose    = flag.Bool("v", false, "log at info level")
	)
	flag.Parse()
	level := "error"
	if *verbose {
		level = "info"
	}
	logx.MustSetup(logx.LogConf{Mode: "console", Encoding: "plain", Level: level})
	logx.DisableStat()

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" && *filePath == "" {
		fatalf("usage: ask [-f etc/nmai.yaml] [-offline] [-file path] <prompt>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx, err := svc.NewServiceContext(ctx, *cfg)
	if err != nil {
		fatalf("init: %v", err)
	}
	defer svcCtx.Close()
	if *offline {
		svcCtx.LLM = nil
	}

	in := logic.ChatInput{Prompt: prompt}
	if *filePath != "" {
		att, err := readAttachment(*filePath, cfg.MaxUploadBytes)
		if err != nil {
			fatalf("read attachment: %v", err)
		}
		in.Attachment = att
	}

	resp, err := logic.NewChatGPTLogic(ctx, svcCtx).ChatGPT(in)
	if err != nil {
		if *offline && errors.Is(err, logic.ErrModelUnavailable) {
			fatalf("no calculator matched the prompt (offline mode)")
		}
		fatalf("chat: %v", err)
	}
	fmt.Println(resp.Reply)
}

func readAttachment(path string, maxBytes int64) (*upload.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxBytes {
		return nil, upload.ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return upload.Extract(info.Name(), mime.TypeByExtension(filepath.Ext(path)), data)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
