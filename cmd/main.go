// 程序入口：读取配置、初始化依赖、启动首次加载与 HTTP 服务；API 注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"chapter-map/internal/api"
	"chapter-map/internal/config"
	"chapter-map/internal/directory"
	"chapter-map/internal/logger"
	"chapter-map/internal/metrics"
	"chapter-map/internal/middleware"
	"chapter-map/internal/migrate"
	"chapter-map/internal/source"
	"chapter-map/internal/store"
	"chapter-map/internal/utils"
	"chapter-map/internal/viewport"
)

func main() {
	config.LoadDotEnv()
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.FromEnv()
	l.Debug("config_api_base", "base", cfg.APIBase)
	l.Debug("config_ui_dir", "dir", cfg.UIDir)
	l.Info("config_source", "url", cfg.SourceURL, "timeout", cfg.SourceTimeout.String(), "refresh", cfg.RefreshInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	var st *store.Store
	if cfg.StoreEnabled {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		defer st.Close()
	} else {
		l.Info("store_disabled")
	}

	regions, err := viewport.LoadRegions(cfg.RegionsFile)
	if err != nil {
		l.Error("regions_load_error", "path", cfg.RegionsFile, "err", err)
		os.Exit(1)
	}
	l.Debug("regions_ready", "count", len(regions.Names()), "file", cfg.RegionsFile)

	holder := &directory.Holder{}
	loader := &source.Loader{
		URL:     cfg.SourceURL,
		Fetcher: source.NewClient(cfg.SourceURL, cfg.SourceTimeout),
		Cache:   source.NewPayloadCache(rc, cfg.CacheTTL),
		Store:   st,
		Holder:  holder,
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.Deps{
		Holder:     holder,
		Regions:    regions,
		Store:      st,
		Loader:     loader,
		AdminToken: cfg.AdminToken,
	})
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.Handle("/", http.FileServer(http.Dir(cfg.UIDir)))
	mux.HandleFunc("/config.js", configJS(cfg))

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(cfg.RateLimit, cfg.RateLimitQPS, handler)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// 首次加载失败只改变 holder 状态，服务继续对外报告 error
		_, _ = loader.Load(gctx, false)
		return nil
	})
	g.Go(func() error {
		return loader.Refresh(gctx, cfg.RefreshInterval)
	})
	g.Go(func() error {
		l.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}

// configJS：向前端暴露 API 基础路径与地图渲染凭据，避免硬编码
func configJS(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__=" + strconv.Quote(cfg.APIBase) + "\n"))
		_, _ = w.Write([]byte("window.__MAP_API_KEY__=" + strconv.Quote(cfg.MapAPIKey) + "\n"))
		_, _ = w.Write([]byte("window.__DATA_SOURCE_URL__=" + strconv.Quote(cfg.SourceURL) + "\n"))
	}
}
