// 包 viewport：选择/视口控制器，只产出数据形式的视口请求，不直接操作地图组件
package viewport

import (
	"math"
	"time"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"chapter-map/internal/member"
)

// 视口常量
const (
	// WorldZoom：默认世界视图缩放级别，中心为 (0,0)
	WorldZoom = 2
	// MemberZoom：单点成员视图的缩放级别
	MemberZoom = 6
	// PaddingDegrees：两点边界框每侧外扩的度数
	PaddingDegrees = 2.0
	// SettleDelay：fit_bounds 之后等待地图稳定再执行 pan_to 的间隔
	SettleDelay = 100 * time.Millisecond
)

// WorldCenter：默认世界视图的中性中心点
var WorldCenter = member.LatLng{Lat: 0, Lng: 0}

// Kind：视口请求类型
type Kind string

const (
	KindWorld  Kind = "world"
	KindPoint  Kind = "point"
	KindBounds Kind = "bounds"
	KindRegion Kind = "region"
)

// Op：渲染侧需要执行的单步操作
type Op string

const (
	OpSetView   Op = "set_view"
	OpFitBounds Op = "fit_bounds"
	OpPanTo     Op = "pan_to"
)

// Bounds：西南角与东北角
type Bounds struct {
	SouthWest member.LatLng `json:"southWest"`
	NorthEast member.LatLng `json:"northEast"`
}

// Contains：点是否落在边界内（不处理跨日界线的框）
func (b Bounds) Contains(p member.LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// 文档注释：单步命令
// 背景：fit_bounds 先确定比例尺，地图稳定后 pan_to 再居中；DelayMs 为相对上一步的等待时间。
type Command struct {
	Op      Op             `json:"op"`
	Center  *member.LatLng `json:"center,omitempty"`
	Zoom    int            `json:"zoom,omitempty"`
	Bounds  *Bounds        `json:"bounds,omitempty"`
	DelayMs int64          `json:"delayMs"`
}

// 文档注释：视口请求
// 背景：与渲染技术无关的纯数据描述；Steps 需按顺序执行。
type Request struct {
	Kind   Kind          `json:"kind"`
	Center member.LatLng `json:"center"`
	Zoom   int           `json:"zoom,omitempty"`
	Bounds *Bounds       `json:"bounds,omitempty"`
	Steps  []Command     `json:"steps"`
}

// World：默认世界视图；清除选择时同样返回此请求
func World() Request {
	c := WorldCenter
	return Request{
		Kind:   KindWorld,
		Center: c,
		Zoom:   WorldZoom,
		Steps:  []Command{{Op: OpSetView, Center: &c, Zoom: WorldZoom}},
	}
}

// 文档注释：成员选择的视口
// 约束：
// - 现居坐标存在且现居国与来源国不同：覆盖两点并外扩 PaddingDegrees 的边界框，中心为两点中点；
//   命令为 fit_bounds，随后间隔 SettleDelay 的 pan_to(中点)。
//   经度区间取两点的最小/最大值，不跨越 ±180°，与地图组件的 fitBounds 语义一致；
// - 否则仅以来源点为中心，缩放 MemberZoom；不会退化为两点边界框。
func ForMember(m member.Member) Request {
	origin := m.Origin.Coordinates
	if !m.Relocated() {
		return Request{
			Kind:   KindPoint,
			Center: origin,
			Zoom:   MemberZoom,
			Steps:  []Command{{Op: OpSetView, Center: &origin, Zoom: MemberZoom}},
		}
	}
	current := *m.Current.Coordinates
	tight := spanning(origin, current)
	mid := fromS2(tight.Center())
	padded := pad(tight, s1.Angle(PaddingDegrees)*s1.Degree)
	b := boundsOf(padded)
	return Request{
		Kind:   KindBounds,
		Center: mid,
		Bounds: &b,
		Steps: []Command{
			{Op: OpFitBounds, Bounds: &b},
			{Op: OpPanTo, Center: &mid, DelayMs: SettleDelay.Milliseconds()},
		},
	}
}

// 文档注释：国家选择的视口
// 约束：命中区域表时返回固定中心与边界框；未命中（含空串）回退世界视图。
func (t *Table) ForCountry(country string) Request {
	r, ok := t.Lookup(country)
	if !ok {
		return World()
	}
	c := r.Center
	b := r.Bounds
	return Request{
		Kind:   KindRegion,
		Center: c,
		Bounds: &b,
		Steps:  []Command{{Op: OpFitBounds, Bounds: &b, Center: &c}},
	}
}

// spanning：覆盖两点的矩形；经度不走跨日界线的短弧
func spanning(a, b member.LatLng) s2.Rect {
	pa, pb := toS2(a), toS2(b)
	return s2.Rect{
		Lat: r1.IntervalFromPoint(pa.Lat.Radians()).AddPoint(pb.Lat.Radians()),
		Lng: s1.Interval{
			Lo: math.Min(pa.Lng.Radians(), pb.Lng.Radians()),
			Hi: math.Max(pa.Lng.Radians(), pb.Lng.Radians()),
		},
	}
}

// pad：四周外扩 margin，纬度截断到 ±90°，经度截断到 ±180°
func pad(r s2.Rect, margin s1.Angle) s2.Rect {
	m := margin.Radians()
	return s2.Rect{
		Lat: r.Lat.Expanded(m).Intersection(s2.FullRect().Lat),
		Lng: s1.Interval{
			Lo: math.Max(r.Lng.Lo-m, -math.Pi),
			Hi: math.Min(r.Lng.Hi+m, math.Pi),
		},
	}
}

func toS2(p member.LatLng) s2.LatLng { return s2.LatLngFromDegrees(p.Lat, p.Lng) }

func fromS2(ll s2.LatLng) member.LatLng {
	return member.LatLng{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}

func boundsOf(r s2.Rect) Bounds {
	return Bounds{SouthWest: fromS2(r.Lo()), NorthEast: fromS2(r.Hi())}
}
