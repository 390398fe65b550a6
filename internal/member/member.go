// 包 member：成员数据模型与解析边界，负责把电子表格的松散行转换为类型化的成员记录
package member

import (
	"strings"
	"unicode/utf8"
)

// 已知列名：与发布表格的表头一致
const (
	ColID               = "id"
	ColName             = "name"
	ColInstitute        = "institute"
	ColEmail            = "email"
	ColBio              = "bio"
	ColOriginCountry    = "originCountry"
	ColOriginLatitude   = "originLatitude"
	ColOriginLongitude  = "originLongitude"
	ColCurrentLocation  = "currentLocation"
	ColCurrentLatitude  = "currentLatitude"
	ColCurrentLongitude = "currentLongitude"
	ColResearchTags     = "researchTags"
	ColImage            = "image"
)

// Columns：全部已知列，顺序与表格一致
var Columns = []string{
	ColID, ColName, ColInstitute, ColEmail, ColBio,
	ColOriginCountry, ColOriginLatitude, ColOriginLongitude,
	ColCurrentLocation, ColCurrentLatitude, ColCurrentLongitude,
	ColResearchTags, ColImage,
}

// LatLng：WGS84 坐标（度）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location：国家 + 坐标
// 约束：Origin 的坐标必填；Current 的坐标可能为空
type Location struct {
	Country     string  `json:"country"`
	Coordinates *LatLng `json:"coordinates"`
}

// Origin：来源地，坐标必填
type Origin struct {
	Country     string `json:"country"`
	Coordinates LatLng `json:"coordinates"`
}

// 文档注释：成员记录
// 背景：一次成功拉取解析后构建，之后只读；新的拉取整体替换，不做字段级更新。
// 约束：Current 为 nil 表示表格中既无现居国家也无可解析坐标；ResearchTags 不含空串。
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Institute    string    `json:"institute"`
	Email        string    `json:"email,omitempty"`
	Bio          string    `json:"bio"`
	Origin       Origin    `json:"origin"`
	Current      *Location `json:"current"`
	ResearchTags []string  `json:"researchTags"`
	Image        string    `json:"image,omitempty"`
}

// HasTag：成员是否带有给定研究标签（精确匹配）
func (m Member) HasTag(tag string) bool {
	for _, t := range m.ResearchTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Relocated：现居地与来源国不同且现居坐标可用
// 背景：只有此时才绘制现居标记与连线，视口才需要覆盖两点
func (m Member) Relocated() bool {
	return m.Current != nil && m.Current.Coordinates != nil && m.Current.Country != m.Origin.Country
}

// Initials：头像加载失败时的文字占位，取每个空白分隔片段的首字符
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(r)
	}
	return b.String()
}
