// 包 config：集中读取环境变量与默认值；.env 由主入口通过 godotenv 预先加载
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSourceURL：原始发布的成员表格（CSV 导出）
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTU3J9hVXZ0VwcJAlvxa1FZ3FGZUDD3Y8xNlcXXQ6Wzt6VjLoh6d4EY3QxywLKEQ9ZyWbwyTVaFOryk/pub?output=csv"

type Config struct {
	Addr            string
	APIBase         string
	UIDir           string
	SourceURL       string
	SourceTimeout   time.Duration
	RefreshInterval time.Duration
	CacheTTL        time.Duration
	RegionsFile     string
	MapAPIKey       string
	AdminToken      string
	RateLimit       bool
	RateLimitQPS    int
	StoreEnabled    bool
}

// LoadDotEnv：依次加载 .env 与 data/env/.env；文件不存在时忽略，已存在的环境变量不被覆盖
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// 文档注释：从环境变量构建配置
// 约束：数值解析失败或非正数时回退默认值；REFRESH_INTERVAL_MINUTES 为 0 表示关闭周期刷新。
func FromEnv() Config {
	return Config{
		Addr:            str("ADDR", ":8080"),
		APIBase:         apiBase(os.Getenv("API_BASE")),
		UIDir:           str("UI_DIST", filepath.Join("ui", "dist")),
		SourceURL:       str("SOURCE_URL", DefaultSourceURL),
		SourceTimeout:   time.Duration(positive("SOURCE_TIMEOUT_SECONDS", 10)) * time.Second,
		RefreshInterval: time.Duration(nonNegative("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		CacheTTL:        time.Duration(positive("CSV_CACHE_TTL_SECONDS", 300)) * time.Second,
		RegionsFile:     os.Getenv("REGIONS_FILE"),
		MapAPIKey:       os.Getenv("MAP_API_KEY"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		RateLimit:       os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:    positive("RATE_LIMIT_QPS", 200),
		StoreEnabled:    os.Getenv("STORE_ENABLED") == "true",
	}
}

// DefaultAPIBase：API 挂载前缀；根路径留给前端静态文件
const DefaultAPIBase = "/api"

// apiBase：去掉尾部斜杠并补齐前导斜杠；为空或仅为 "/" 时回退默认值，避免与静态文件同挂在 "/"
func apiBase(v string) string {
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if v == "" {
		return DefaultAPIBase
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return v
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positive(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func nonNegative(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return def
}
