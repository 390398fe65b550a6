package migrate

import (
	"context"
	"database/sql"

	"chapter-map/internal/logger"
)

// 背景：首次运行自动创建加载审计表
// 约束：使用 IF NOT EXISTS，可重复执行
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS _member_loads (
            id SERIAL PRIMARY KEY,
            source TEXT NOT NULL,
            loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            status TEXT NOT NULL,
            members INT NOT NULL DEFAULT 0,
            rejected INT NOT NULL DEFAULT 0,
            from_cache BOOLEAN NOT NULL DEFAULT FALSE,
            error TEXT NOT NULL DEFAULT ''
        )`,
	`CREATE INDEX IF NOT EXISTS idx_member_loads_loaded_at ON _member_loads(loaded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS _member_rejections (
            load_id INT NOT NULL REFERENCES _member_loads(id) ON DELETE CASCADE,
            line INT NOT NULL,
            member_id TEXT NOT NULL,
            reason TEXT NOT NULL
        )`,
	`CREATE INDEX IF NOT EXISTS idx_member_rejections_load ON _member_rejections(load_id)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
