package directory

import (
	"fmt"

	"chapter-map/internal/member"
)

// 来源标记配色默认值：同国成员按排名逐级变暗，不低于下限
const (
	DefaultHue        = 0
	DefaultSaturation = 100
	DefaultLightness  = 70
	DefaultStep       = 15
	DefaultFloor      = 40
)

// Color：HSL 颜色，饱和度与亮度为百分比
type Color struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// String：CSS 形式，例如 hsl(0,100%,70%)
func (c Color) String() string {
	return fmt.Sprintf("hsl(%d,%d%%,%d%%)", c.H, c.S, c.L)
}

// MarshalText：JSON 中直接输出 CSS 形式
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// 文档注释：来源标记配色器
// 背景：同一来源国的多名成员标记需要可区分但同色系；排名为成员在“同国成员保序子序列”中的下标。
// 约束：无随机性；相同输入恒得相同输出。
type Palette struct {
	Hue        int
	Saturation int
	Base       int
	Step       int
	Floor      int

	rank map[string]map[string]int
}

// NewPalette：按默认参数为成员列表建立排名
func NewPalette(members []member.Member) *Palette {
	p := &Palette{
		Hue:        DefaultHue,
		Saturation: DefaultSaturation,
		Base:       DefaultLightness,
		Step:       DefaultStep,
		Floor:      DefaultFloor,
		rank:       make(map[string]map[string]int),
	}
	for _, m := range members {
		byID, ok := p.rank[m.Origin.Country]
		if !ok {
			byID = make(map[string]int)
			p.rank[m.Origin.Country] = byID
		}
		if _, seen := byID[m.ID]; !seen {
			byID[m.ID] = len(byID)
		}
	}
	return p
}

// Rank：成员在同国子序列中的下标；未知组合为 0
func (p *Palette) Rank(country, id string) int {
	return p.rank[country][id]
}

// ColorFor：lightness = max(Floor, Base - rank*Step)
func (p *Palette) ColorFor(country, id string) Color {
	l := p.Base - p.Rank(country, id)*p.Step
	if l < p.Floor {
		l = p.Floor
	}
	return Color{H: p.Hue, S: p.Saturation, L: l}
}
