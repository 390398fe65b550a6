package source

import (
	"context"
	"time"

	"chapter-map/internal/logger"
)

// 文档注释：周期刷新
// 背景：表格在上游持续编辑，按固定间隔重新加载；错误由加载周期记录，调度继续。
// 约束：interval<=0 时立即返回（刷新关闭）；阻塞直到 ctx 取消，取消后返回 nil。
func (l *Loader) Refresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		logger.L().Debug("refresh_disabled")
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	logger.L().Info("refresh_start", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.L().Info("refresh_stop")
			return nil
		case <-t.C:
			_, _ = l.Load(ctx, false)
		}
	}
}
