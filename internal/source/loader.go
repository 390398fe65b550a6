package source

import (
	"bytes"
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"chapter-map/internal/directory"
	"chapter-map/internal/logger"
	"chapter-map/internal/member"
	"chapter-map/internal/metrics"
	"chapter-map/internal/store"
)

// Fetcher：载荷来源；*Client 为生产实现
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// 文档注释：加载周期
// 背景：缓存 → 拉取 → 解码 → 逐行解析 → 构建快照 → 写入 holder，全程一次只跑一个周期，并发调用共享同一结果。
// 约束：
// - 首次加载失败时 holder 进入 error 状态；已有快照时刷新失败只记日志，保留旧快照；
// - 被关停取消的周期不改变 holder；
// - 被拒绝的行计数并记 warn，不影响整体成功；
// - 审计（Store）与缓存（Cache）均可为 nil。
type Loader struct {
	URL     string
	Fetcher Fetcher
	Cache   *PayloadCache
	Store   *store.Store
	Holder  *directory.Holder
	Now     func() time.Time

	group singleflight.Group
}

// Load：执行一次加载周期；force 为真时跳过并清除载荷缓存
func (l *Loader) Load(ctx context.Context, force bool) (*directory.Snapshot, error) {
	v, err, shared := l.group.Do("load", func() (any, error) {
		return l.load(ctx, force)
	})
	if shared {
		logger.L().Debug("members_load_shared")
	}
	if err != nil {
		return nil, err
	}
	return v.(*directory.Snapshot), nil
}

func (l *Loader) load(ctx context.Context, force bool) (*directory.Snapshot, error) {
	lg := logger.L()
	at := l.now()
	lg.Info("members_load_begin", "source", l.URL, "force", force)

	var payload []byte
	fromCache := false
	if force {
		l.Cache.Invalidate(ctx, l.URL)
	} else {
		payload, fromCache = l.Cache.Get(ctx, l.URL)
	}
	if !fromCache {
		b, err := l.Fetcher.Fetch(ctx)
		if err != nil {
			return nil, l.fail(ctx, at, "fetch", err)
		}
		payload = b
	}

	rows, err := member.DecodeCSV(bytes.NewReader(payload))
	if err != nil {
		if fromCache {
			l.Cache.Invalidate(ctx, l.URL)
		}
		return nil, l.fail(ctx, at, "decode", err)
	}
	if !fromCache {
		l.Cache.Set(ctx, l.URL, payload)
	}

	batch := member.ParseRows(rows)
	for _, r := range batch.Rejected {
		lg.Warn("row_rejected", "line", r.Line, "id", r.ID, "reason", string(r.Reason))
		metrics.RowsRejectedTotal.WithLabelValues(string(r.Reason)).Inc()
	}
	metrics.RowsParsedTotal.Add(float64(len(batch.Members)))
	metrics.MembersLoaded.Set(float64(len(batch.Members)))
	if len(batch.Members) == 0 {
		lg.Warn("members_empty", "rows", len(rows))
	}

	snap := directory.NewSnapshot(batch, l.URL, at)
	l.Holder.SetReady(snap)
	lg.Info("members_load_done",
		"members", len(batch.Members),
		"rejected", len(batch.Rejected),
		"tags", len(snap.Tags)-1,
		"countries", len(snap.Countries),
		"from_cache", fromCache,
		"duration_ms", time.Since(at).Milliseconds(),
	)
	l.audit(ctx, store.Load{
		Source:    l.URL,
		LoadedAt:  at,
		Status:    string(directory.StatusReady),
		Members:   len(batch.Members),
		Rejected:  len(batch.Rejected),
		FromCache: fromCache,
		Rows:      batch.Rejected,
	})
	return snap, nil
}

func (l *Loader) fail(ctx context.Context, at time.Time, kind string, err error) error {
	lg := logger.L()
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		lg.Info("members_load_cancelled", "stage", kind)
		return err
	}
	metrics.FetchFailTotal.WithLabelValues(kind).Inc()
	if l.Holder.Load().Status == directory.StatusReady {
		lg.Error("members_refresh_error", "stage", kind, "err", err)
	} else {
		lg.Error("members_load_error", "stage", kind, "err", err)
		l.Holder.SetError(err)
	}
	l.audit(ctx, store.Load{
		Source:   l.URL,
		LoadedAt: at,
		Status:   string(directory.StatusError),
		Error:    err.Error(),
	})
	return err
}

func (l *Loader) audit(ctx context.Context, rec store.Load) {
	if l.Store == nil {
		return
	}
	if _, err := l.Store.RecordLoad(ctx, rec); err != nil {
		logger.L().Error("store_load_error", "err", err)
	}
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
