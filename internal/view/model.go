package view

import (
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"chapter-map/internal/directory"
	"chapter-map/internal/member"
	"chapter-map/internal/viewport"
)

// 标记与连线的渲染约定
const (
	// CellPrecision：标记网格键的 geohash 精度（约 150m）
	CellPrecision = 7
	LineDash      = "5,10"
	LineColor     = "#666"
)

// Icon：标记图标类型；来源为金色，现居为蓝色
type Icon string

const (
	IconOrigin  Icon = "origin"
	IconCurrent Icon = "current"
)

// 文档注释：点标记
// 背景：Cell 为位置的 geohash，渲染侧可据此合并或错开重叠标记；Color 仅来源标记携带。
type Marker struct {
	MemberID string           `json:"memberId"`
	Icon     Icon             `json:"icon"`
	Position member.LatLng    `json:"position"`
	Cell     string           `json:"cell"`
	Color    *directory.Color `json:"color,omitempty"`
	Selected bool             `json:"selected,omitempty"`
}

// Polyline：来源到现居的虚线
type Polyline struct {
	MemberID string          `json:"memberId"`
	Points   []member.LatLng `json:"points"`
	Dash     string          `json:"dash"`
	Color    string          `json:"color"`
}

// 文档注释：详情面板数据
// 约束：CurrentCountry 仅在与来源国不同时填写；Initials 为头像加载失败时的占位。
type Detail struct {
	member.Member
	Initials       string `json:"initials"`
	CurrentCountry string `json:"currentCountry,omitempty"`
	ResearchAreas  string `json:"researchAreas"`
}

// Model：一次渲染所需的全部派生数据
type Model struct {
	State     State            `json:"state"`
	Tags      []string         `json:"tags"`
	Countries []string         `json:"countries"`
	Members   []member.Member  `json:"members"`
	Markers   []Marker         `json:"markers"`
	Lines     []Polyline       `json:"lines"`
	Selected  *Detail          `json:"selected"`
	Viewport  viewport.Request `json:"viewport"`
}

// 文档注释：构建视图模型
// 背景：纯函数，每次状态变化基于只读快照全量重算；不修改成员列表。
// 约束：
// - 每个可见成员一个来源标记，颜色来自配色器；
// - 仅被选中且可见、且已迁居（现居国不同且坐标可用）的成员绘制现居标记与虚线；
// - 视口优先级：选中成员 > 国家筛选 > 世界视图；空或未知的选中 id 均视为未选择。
func Build(snap *directory.Snapshot, regions *viewport.Table, st State) Model {
	if st.Tag == "" {
		st.Tag = directory.AllTags
	}
	visible := directory.Filter(snap.Members, st.FilterState)
	var sel member.Member
	hasSel := false
	if st.Selected != "" {
		sel, hasSel = snap.Member(st.Selected)
	}
	if !hasSel {
		st.Selected = ""
	}

	out := Model{
		State:     st,
		Tags:      snap.Tags,
		Countries: snap.Countries,
		Members:   visible,
		Markers:   make([]Marker, 0, len(visible)+1),
		Lines:     []Polyline{},
	}
	for _, m := range visible {
		c := snap.Palette.ColorFor(m.Origin.Country, m.ID)
		selected := hasSel && m.ID == sel.ID
		out.Markers = append(out.Markers, Marker{
			MemberID: m.ID,
			Icon:     IconOrigin,
			Position: m.Origin.Coordinates,
			Cell:     cell(m.Origin.Coordinates),
			Color:    &c,
			Selected: selected,
		})
		if selected && m.Relocated() {
			cur := *m.Current.Coordinates
			out.Markers = append(out.Markers, Marker{
				MemberID: m.ID,
				Icon:     IconCurrent,
				Position: cur,
				Cell:     cell(cur),
				Selected: true,
			})
			out.Lines = append(out.Lines, Polyline{
				MemberID: m.ID,
				Points:   []member.LatLng{m.Origin.Coordinates, cur},
				Dash:     LineDash,
				Color:    LineColor,
			})
		}
	}

	switch {
	case hasSel:
		d := NewDetail(sel)
		out.Selected = &d
		out.Viewport = viewport.ForMember(sel)
	case st.Country != "":
		out.Viewport = regions.ForCountry(st.Country)
	default:
		out.Viewport = viewport.World()
	}
	return out
}

// NewDetail：详情面板数据
func NewDetail(m member.Member) Detail {
	d := Detail{
		Member:        m,
		Initials:      member.Initials(m.Name),
		ResearchAreas: strings.Join(m.ResearchTags, ", "),
	}
	if m.Current != nil && m.Current.Country != m.Origin.Country {
		d.CurrentCountry = m.Current.Country
	}
	return d
}

func cell(p member.LatLng) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, CellPrecision)
}
