// 包 api：集中注册 HTTP API 路由，主入口挂载到 API_BASE 前缀
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"chapter-map/internal/directory"
	"chapter-map/internal/logger"
	"chapter-map/internal/metrics"
	"chapter-map/internal/store"
	"chapter-map/internal/view"
	"chapter-map/internal/viewport"
)

// Reloader：强制重新加载；*source.Loader 为生产实现
type Reloader interface {
	Load(ctx context.Context, force bool) (*directory.Snapshot, error)
}

// DefaultReloadTimeout：/reload 触发的加载周期上限
const DefaultReloadTimeout = 30 * time.Second

// Deps：路由依赖；Store 与 Loader 可为 nil，ReloadTimeout<=0 时取默认值
type Deps struct {
	Holder        *directory.Holder
	Regions       *viewport.Table
	Store         *store.Store
	Loader        Reloader
	AdminToken    string
	ReloadTimeout time.Duration
}

// 文档注释：构建 API 路由
// 背景：所有派生数据（筛选、标记、视口）按请求从只读快照重算，处理函数之间不共享可变状态。
// 约束：快照未就绪（loading/error）时，依赖成员数据的端点返回 503 并附带状态；响应均为 no-store。
func BuildRoutes(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(route string, h http.HandlerFunc) {
		mux.Handle(route, instrument(route, h))
	}

	handle("/status", func(w http.ResponseWriter, r *http.Request) {
		st := d.Holder.Load()
		res := statusResult{Status: string(st.Status)}
		if st.Err != nil {
			res.Error = st.Err.Error()
		}
		if s := st.Snapshot; s != nil {
			res.Members = len(s.Members)
			res.Rejected = len(s.Rejected)
			res.LoadedAt = s.LoadedAt
			res.Source = s.Source
		}
		writeJSON(w, http.StatusOK, res)
	})

	handle("/members", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		writeJSON(w, http.StatusOK, directory.Filter(snap.Members, filterFrom(r)))
	}))

	handle("/member", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		m, ok := snap.Member(r.URL.Query().Get("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		writeJSON(w, http.StatusOK, view.NewDetail(m))
	}))

	handle("/tags", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		writeJSON(w, http.StatusOK, snap.Tags)
	}))

	handle("/countries", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		writeJSON(w, http.StatusOK, snap.Countries)
	}))

	handle("/rejections", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		out := make([]rejectionResult, 0, len(snap.Rejected))
		for _, rj := range snap.Rejected {
			out = append(out, rejectionResult{Line: rj.Line, ID: rj.ID, Reason: rj.Reason})
		}
		writeJSON(w, http.StatusOK, out)
	}))

	handle("/view", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		q := r.URL.Query()
		st := view.Default().
			WithTag(q.Get("tag")).
			WithCountry(q.Get("country")).
			Select(q.Get("member"))
		writeJSON(w, http.StatusOK, view.Build(snap, d.Regions, st))
	}))

	handle("/viewport/member", d.ready(func(w http.ResponseWriter, r *http.Request, snap *directory.Snapshot) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing id")
			return
		}
		m, ok := snap.Member(id)
		if !ok {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		writeJSON(w, http.StatusOK, viewport.ForMember(m))
	}))

	handle("/viewport/country", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Regions.ForCountry(r.URL.Query().Get("name")))
	})

	handle("/viewport/world", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewport.World())
	})

	handle("/loads", func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeError(w, http.StatusNotFound, "load audit disabled")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		loads, err := d.Store.RecentLoads(r.Context(), limit)
		if err != nil {
			logger.L().Error("store_query_error", "err", err)
			writeError(w, http.StatusInternalServerError, "store query failed")
			return
		}
		if loads == nil {
			loads = []store.Load{}
		}
		writeJSON(w, http.StatusOK, loads)
	})

	handle("/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		t := r.Header.Get("x-admin-token")
		if t == "" || t != d.AdminToken {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if d.Loader == nil {
			writeError(w, http.StatusServiceUnavailable, "loader unavailable")
			return
		}
		// 加载周期可能与周期刷新共享，调用方断开不应取消它
		timeout := d.ReloadTimeout
		if timeout <= 0 {
			timeout = DefaultReloadTimeout
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()
		snap, err := d.Loader.Load(ctx, true)
		if err != nil {
			logger.L().Error("reload_error", "err", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		logger.L().Info("reload_done", "members", len(snap.Members))
		writeJSON(w, http.StatusOK, statusResult{
			Status:   string(directory.StatusReady),
			Members:  len(snap.Members),
			Rejected: len(snap.Rejected),
			LoadedAt: snap.LoadedAt,
			Source:   snap.Source,
		})
	})

	return mux
}

// ready：仅在快照就绪时调用 h，否则返回 503 与当前状态
func (d Deps) ready(h func(http.ResponseWriter, *http.Request, *directory.Snapshot)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Holder.Load()
		if st.Status != directory.StatusReady || st.Snapshot == nil {
			res := statusResult{Status: string(st.Status)}
			if st.Err != nil {
				res.Error = st.Err.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, res)
			return
		}
		h(w, r, st.Snapshot)
	}
}

func filterFrom(r *http.Request) directory.FilterState {
	q := r.URL.Query()
	f := directory.DefaultFilter()
	if t := q.Get("tag"); t != "" {
		f.Tag = t
	}
	f.Country = q.Get("country")
	return f
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		next.ServeHTTP(w, r)
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(t0).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResult{Error: msg})
}
