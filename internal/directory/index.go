// 包 directory：基于只读成员列表的派生状态（筛选项索引、筛选、标记配色、当前快照）
package directory

import (
	"sort"

	"chapter-map/internal/member"
)

// AllTags：标签维度的“不过滤”哨兵值
const AllTags = "all"

// 文档注释：研究标签索引
// 约束：结果为去重后按字典序升序排列，首位固定为 "all"；与输入顺序无关，保证测试可复现。
func Tags(members []member.Member) []string {
	set := make(map[string]struct{})
	for _, m := range members {
		for _, t := range m.ResearchTags {
			set[t] = struct{}{}
		}
	}
	return append([]string{AllTags}, sorted(set)...)
}

// Countries：来源国索引，去重升序；空国家名不计入；不含哨兵
func Countries(members []member.Member) []string {
	set := make(map[string]struct{})
	for _, m := range members {
		if m.Origin.Country != "" {
			set[m.Origin.Country] = struct{}{}
		}
	}
	return sorted(set)
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
