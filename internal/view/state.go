// 包 view：筛选/选择状态与由其派生的完整视图模型
package view

import "chapter-map/internal/directory"

// 文档注释：界面状态
// 背景：筛选与选择合并为一个显式、可序列化的结构，随请求传入纯函数；不存在隐藏的全局状态。
// 约束：Selected 为空串表示未选择；同一时刻最多一个成员被选中。
type State struct {
	directory.FilterState
	Selected string `json:"selected"`
}

// Default：初次渲染与 Clear 之后的状态
func Default() State { return State{FilterState: directory.DefaultFilter()} }

// WithTag：切换标签筛选；空串视为 "all"
func (s State) WithTag(tag string) State {
	if tag == "" {
		tag = directory.AllTags
	}
	s.Tag = tag
	return s
}

// WithCountry：切换国家筛选；空串表示不过滤
func (s State) WithCountry(country string) State {
	s.Country = country
	return s
}

// Select：选中成员，隐式替换之前的选择
func (s State) Select(id string) State {
	s.Selected = id
	return s
}

// Deselect：仅清除成员选择
func (s State) Deselect() State {
	s.Selected = ""
	return s
}

// Clear：全部恢复默认
func (s State) Clear() State { return Default() }
