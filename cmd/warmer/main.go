// Command warmer keeps the shared feed cache fresh so chat requests rarely
// wait on upstream feeds. Point it at the same Redis as the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/cli"
	"nmai-api/internal/config"
	"nmai-api/internal/svc"
	"nmai-api/pkg/textparse"
)

const (
	refreshTimeout  = 30 * time.Second // Budget for one refresh round
	shutdownTimeout = 10 * time.Second // Grace period for shutdown
)

var errNoFeeds = errors.New("warmer: no market provider configured")

func main() {
	var (
		configPath = flag.String("f", "etc/nmai.yaml", "path to the service config")
		interval   = flag.Duration("interval", time.Minute, "refresh interval")
	)
	flag.Parse()
	logx.DisableStat()

	appCfg, err := config.Load(*configPath)
	if err != nil {
		logx.Must(err)
	}
	cli.LogConfigSummary(appCfg)
	if appCfg.Redis.Host == "" {
		logx.Info("warmer: Redis is not configured; refreshing a process-local cache only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx, err := svc.NewServiceContext(ctx, *appCfg)
	if err != nil {
		logx.Must(err)
	}
	defer svcCtx.Close()
	if svcCtx.Feeds == nil {
		logx.Must(errNoFeeds)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(ctx, svcCtx, *interval)
	}()

	logx.Infof("warmer: started, interval=%s", *interval)
	<-ctx.Done()
	logx.Info("warmer: shutdown signal received")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logx.Info("warmer: stopped cleanly")
	case <-time.After(shutdownTimeout):
		logx.Error("warmer: shutdown timeout exceeded, forcing exit")
	}
}

func run(ctx context.Context, svcCtx *svc.ServiceContext, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refreshOnce(ctx, svcCtx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshOnce(ctx, svcCtx)
		}
	}
}

func refreshOnce(parent context.Context, svcCtx *svc.ServiceContext) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	today := textparse.FormatISODate(svcCtx.Now().In(svcCtx.Config.Location()))
	start := time.Now()
	if err := svcCtx.Feeds.Refresh(ctx, today); err != nil {
		logx.WithContext(ctx).Errorf("warmer: refresh date=%s: %v", today, err)
		return
	}
	logx.WithContext(ctx).Infow("warmer: feeds refreshed",
		logx.Field("date", today),
		logx.Field("duration", time.Since(start).String()))
}
