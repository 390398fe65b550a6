package directory

import (
	"sync/atomic"
	"time"

	"chapter-map/internal/member"
)

// 文档注释：一次成功加载的只读快照
// 背景：成员列表、索引与配色一次性构建，之后只读共享；新的加载整体替换，不做字段级更新。
type Snapshot struct {
	Members   []member.Member
	Tags      []string
	Countries []string
	Palette   *Palette
	Rejected  []member.Rejection
	Source    string
	LoadedAt  time.Time

	byID map[string]int
}

// NewSnapshot：由解析批次构建快照
func NewSnapshot(batch member.Batch, source string, at time.Time) *Snapshot {
	s := &Snapshot{
		Members:   batch.Members,
		Tags:      Tags(batch.Members),
		Countries: Countries(batch.Members),
		Palette:   NewPalette(batch.Members),
		Rejected:  batch.Rejected,
		Source:    source,
		LoadedAt:  at,
		byID:      make(map[string]int, len(batch.Members)),
	}
	for i, m := range batch.Members {
		if m.ID == "" {
			continue
		}
		if _, ok := s.byID[m.ID]; !ok {
			s.byID[m.ID] = i
		}
	}
	return s
}

// Member：按 id 查找成员；空 id 表示未选择，总是未命中
func (s *Snapshot) Member(id string) (member.Member, bool) {
	if id == "" {
		return member.Member{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return member.Member{}, false
	}
	return s.Members[i], true
}

// Status：加载状态
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// State：holder 当前值；Err 仅在 StatusError 时非空
type State struct {
	Status   Status
	Snapshot *Snapshot
	Err      error
}

// 文档注释：当前快照持有者
// 背景：通过 atomic.Value 无锁切换，读路径不阻塞；加载协程写入，HTTP 处理读取。
// 约束：零值即为 loading 状态；error 状态不携带快照，是否在失败时覆盖已有快照由加载方决定。
type Holder struct{ v atomic.Value }

// Load：读取当前状态
func (h *Holder) Load() State {
	x := h.v.Load()
	if x == nil {
		return State{Status: StatusLoading}
	}
	return x.(State)
}

// SetReady：替换为新快照
func (h *Holder) SetReady(s *Snapshot) { h.v.Store(State{Status: StatusReady, Snapshot: s}) }

// SetError：进入终止错误状态，页面不做部分渲染
func (h *Holder) SetError(err error) { h.v.Store(State{Status: StatusError, Err: err}) }
