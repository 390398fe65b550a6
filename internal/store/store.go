// 包 store：加载审计的数据访问层（PostgreSQL），记录每次拉取解析的结果与被拒绝的行
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"chapter-map/internal/logger"
	"chapter-map/internal/member"
)

// Store：持有连接池；nil 表示审计关闭，所有方法为空操作
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Load：一次加载周期的审计记录
type Load struct {
	ID        int64              `json:"id"`
	Source    string             `json:"source"`
	LoadedAt  time.Time          `json:"loadedAt"`
	Status    string             `json:"status"`
	Members   int                `json:"members"`
	Rejected  int                `json:"rejected"`
	FromCache bool               `json:"fromCache"`
	Error     string             `json:"error,omitempty"`
	Rows      []member.Rejection `json:"-"`
}

// 文档注释：写入一次加载记录及其拒绝行
// 约束：单事务写入；返回新记录 id。
func (s *Store) RecordLoad(ctx context.Context, l Load) (int64, error) {
	if s == nil {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `INSERT INTO _member_loads(source, loaded_at, status, members, rejected, from_cache, error)
        VALUES($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		l.Source, l.LoadedAt, l.Status, l.Members, l.Rejected, l.FromCache, l.Error,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	if len(l.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO _member_rejections(load_id, line, member_id, reason) VALUES($1,$2,$3,$4)")
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for _, r := range l.Rows {
			if _, err := stmt.ExecContext(ctx, id, r.Line, r.ID, string(r.Reason)); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Debug("store_load_recorded", "id", id, "status", l.Status, "rejected", len(l.Rows))
	return id, nil
}

// RecentLoads：按时间倒序返回最近的加载记录
func (s *Store) RecentLoads(ctx context.Context, limit int) ([]Load, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, loaded_at, status, members, rejected, from_cache, error
        FROM _member_loads ORDER BY loaded_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Load
	for rows.Next() {
		var l Load
		if err := rows.Scan(&l.ID, &l.Source, &l.LoadedAt, &l.Status, &l.Members, &l.Rejected, &l.FromCache, &l.Error); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
