package directory

import "chapter-map/internal/member"

// 文档注释：筛选状态
// 背景：显式、可序列化的状态结构，随请求传入纯函数；不持久化。
// 约束：Tag 为 "all" 或精确标签；Country 为空串表示不过滤。
type FilterState struct {
	Tag     string `json:"tag"`
	Country string `json:"country"`
}

// DefaultFilter：两个维度均不过滤
func DefaultFilter() FilterState { return FilterState{Tag: AllTags} }

// Matches：标签与国家两个条件独立且同时满足
func (f FilterState) Matches(m member.Member) bool {
	if f.Tag != AllTags && !m.HasTag(f.Tag) {
		return false
	}
	if f.Country != "" && f.Country != m.Origin.Country {
		return false
	}
	return true
}

// 文档注释：筛选可见成员
// 约束：返回输入的保序子序列；纯函数，幂等；每次状态变化可同步全量调用。
func Filter(members []member.Member, f FilterState) []member.Member {
	out := make([]member.Member, 0, len(members))
	for _, m := range members {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
