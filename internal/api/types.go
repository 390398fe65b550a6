package api

import (
	"time"

	"chapter-map/internal/member"
)

// 文档注释：/status 返回结构
// 约束：Error 仅在 error 状态填写；loading 状态下计数为 0。
type statusResult struct {
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Members  int       `json:"members"`
	Rejected int       `json:"rejected"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
	Source   string    `json:"source,omitempty"`
}

// rejectionResult：被拒绝的行，供表格维护者排查
type rejectionResult struct {
	Line   int           `json:"line"`
	ID     string        `json:"id,omitempty"`
	Reason member.Reason `json:"reason"`
}

type errorResult struct {
	Error string `json:"error"`
}
