package viewport

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"chapter-map/internal/member"
)

// Region：已知国家的预计算中心与边界框
type Region struct {
	Name   string        `json:"name"`
	Center member.LatLng `json:"center"`
	Bounds Bounds        `json:"bounds"`
}

// Table：国家名 -> 区域；按名称大小写不敏感查找
type Table struct {
	regions map[string]Region
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// NewTable：由区域列表构建查找表，后出现的同名区域覆盖先出现的
func NewTable(regions []Region) *Table {
	t := &Table{regions: make(map[string]Region, len(regions))}
	for _, r := range regions {
		t.regions[key(r.Name)] = r
	}
	return t
}

// Lookup：按国家名查找
func (t *Table) Lookup(country string) (Region, bool) {
	if t == nil || country == "" {
		return Region{}, false
	}
	r, ok := t.regions[key(country)]
	return r, ok
}

// Names：表内国家名，升序
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

func region(name string, lat, lng, south, west, north, east float64) Region {
	return Region{
		Name:   name,
		Center: member.LatLng{Lat: lat, Lng: lng},
		Bounds: Bounds{
			SouthWest: member.LatLng{Lat: south, Lng: west},
			NorthEast: member.LatLng{Lat: north, Lng: east},
		},
	}
}

// 文档注释：内置区域表（拉丁美洲分会成员的主要来源国）
// 约束：数值为近似国界外接框，仅用于视口定位。
var builtinRegions = []Region{
	region("Argentina", -38.4, -63.6, -55.1, -73.6, -21.8, -53.6),
	region("Bolivia", -16.3, -63.6, -22.9, -69.7, -9.7, -57.5),
	region("Brazil", -14.2, -51.9, -33.8, -74.0, 5.3, -34.8),
	region("Chile", -35.7, -71.5, -55.9, -75.7, -17.5, -66.4),
	region("Colombia", 4.6, -74.3, -4.2, -79.0, 12.5, -66.9),
	region("Costa Rica", 9.7, -83.8, 8.0, -85.9, 11.2, -82.6),
	region("Cuba", 21.5, -77.8, 19.8, -85.0, 23.3, -74.1),
	region("Dominican Republic", 18.7, -70.2, 17.5, -72.0, 19.9, -68.3),
	region("Ecuador", -1.8, -78.2, -5.0, -81.1, 1.5, -75.2),
	region("El Salvador", 13.8, -88.9, 13.1, -90.1, 14.5, -87.7),
	region("Guatemala", 15.8, -90.2, 13.7, -92.3, 17.8, -88.2),
	region("Honduras", 15.2, -86.2, 12.9, -89.4, 16.5, -83.1),
	region("Mexico", 23.6, -102.6, 14.5, -118.4, 32.7, -86.7),
	region("Nicaragua", 12.9, -85.2, 10.7, -87.7, 15.0, -82.7),
	region("Panama", 8.5, -80.8, 7.2, -83.1, 9.7, -77.2),
	region("Paraguay", -23.4, -58.4, -27.6, -62.7, -19.3, -54.3),
	region("Peru", -9.2, -75.0, -18.4, -81.4, -0.04, -68.7),
	region("Puerto Rico", 18.2, -66.6, 17.9, -67.3, 18.5, -65.6),
	region("Uruguay", -32.5, -55.8, -35.0, -58.4, -30.1, -53.1),
	region("Venezuela", 6.4, -66.6, 0.6, -73.4, 12.2, -59.8),
}

// Builtin：内置区域表
func Builtin() *Table { return NewTable(builtinRegions) }

// regionFile：YAML 覆盖文件格式
type regionFile struct {
	Regions []struct {
		Name   string        `yaml:"name"`
		Center [2]float64    `yaml:"center"`
		Bounds [2][2]float64 `yaml:"bounds"`
	} `yaml:"regions"`
}

// 文档注释：加载区域表
// 背景：以内置表为底，可选 YAML 文件追加或覆盖同名国家；path 为空时仅返回内置表。
// 约束：坐标格式为 [lat, lng]，bounds 为 [[south, west], [north, east]]；非法坐标返回错误。
func LoadRegions(path string) (*Table, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regions: read %s: %w", path, err)
	}
	return ParseRegions(data)
}

// ParseRegions：解析 YAML 内容并与内置表合并
func ParseRegions(data []byte) (*Table, error) {
	var f regionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("regions: parse: %w", err)
	}
	all := append([]Region(nil), builtinRegions...)
	for i, r := range f.Regions {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("regions: entry %d: empty name", i)
		}
		reg := region(r.Name, r.Center[0], r.Center[1], r.Bounds[0][0], r.Bounds[0][1], r.Bounds[1][0], r.Bounds[1][1])
		if !validRegion(reg) {
			return nil, fmt.Errorf("regions: entry %q: coordinates out of range", r.Name)
		}
		all = append(all, reg)
	}
	return NewTable(all), nil
}

func validRegion(r Region) bool {
	for _, p := range []member.LatLng{r.Center, r.Bounds.SouthWest, r.Bounds.NorthEast} {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return false
		}
	}
	return r.Bounds.SouthWest.Lat <= r.Bounds.NorthEast.Lat
}
