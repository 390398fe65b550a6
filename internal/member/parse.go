package member

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Row：一行原始数据，列名 -> 原始标量（字符串或已被上游解码为数值）
type Row map[string]any

// LineKey：DecodeCSV 写入的表格行号键，不是表格列
const LineKey = "#line"

// Line：行号；未由解码器填写时为 0
func (r Row) Line() int {
	n, _ := r[LineKey].(int)
	return n
}

// Reason：行被拒绝的原因
type Reason string

const (
	ReasonMissingOrigin Reason = "missing-origin-coordinates"
	ReasonDuplicateID   Reason = "duplicate-id"
	ReasonMissingID     Reason = "missing-id"
)

// 文档注释：行拒绝错误
// 背景：逐行拒绝只影响该行，由调用方决定跳过记录还是整批中止；Line 为表格中的行号（表头为第 1 行），未知时为 0。
type Rejection struct {
	Line   int    `json:"line"`
	ID     string `json:"id"`
	Reason Reason `json:"reason"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("row %d (id %q) rejected: %s", r.Line, r.ID, r.Reason)
}

// 文档注释：解析单行为成员
// 约束：
// - 来源经纬度缺失、非数字、非有限值或越界时拒绝，原因 missing-origin-coordinates；
// - 现居经纬度任一不可用时仅置空 Current.Coordinates，不拒绝；
// - 其余文本字段缺失时为空串。
func ParseRow(row Row) (Member, error) {
	m := Member{
		ID:        text(row[ColID]),
		Name:      text(row[ColName]),
		Institute: text(row[ColInstitute]),
		Email:     text(row[ColEmail]),
		Bio:       text(row[ColBio]),
		Image:     text(row[ColImage]),
	}
	lat, okLat := latitude(row[ColOriginLatitude])
	lng, okLng := longitude(row[ColOriginLongitude])
	if !okLat || !okLng {
		return Member{}, &Rejection{ID: m.ID, Reason: ReasonMissingOrigin}
	}
	m.Origin = Origin{Country: text(row[ColOriginCountry]), Coordinates: LatLng{Lat: lat, Lng: lng}}

	currentCountry := text(row[ColCurrentLocation])
	clat, okLat := latitude(row[ColCurrentLatitude])
	clng, okLng := longitude(row[ColCurrentLongitude])
	if okLat && okLng {
		m.Current = &Location{Country: currentCountry, Coordinates: &LatLng{Lat: clat, Lng: clng}}
	} else if currentCountry != "" {
		m.Current = &Location{Country: currentCountry}
	}
	m.ResearchTags = SplitTags(text(row[ColResearchTags]))
	return m, nil
}

// SplitTags：按逗号切分、去空白、丢弃空段，保持顺序且不去重
func SplitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// 文档注释：批量解析结果
// 背景：Members 为接受的成员（保持原顺序），Rejected 为被拒绝的行，供计数与日志。
type Batch struct {
	Members  []Member
	Rejected []Rejection
}

// 文档注释：批量解析
// 约束：
// - 空 id 的行以 missing-id 拒绝，空串保留给“未选择”；
// - 重复 id 采用首条生效策略，后续同 id 行以 duplicate-id 拒绝；
// - 行号取自 LineKey，缺失时按“表头 + 序号”推算。
func ParseRows(rows []Row) Batch {
	out := Batch{Members: make([]Member, 0, len(rows))}
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		line := row.Line()
		if line == 0 {
			line = i + 2
		}
		m, err := ParseRow(row)
		if err != nil {
			rej := err.(*Rejection)
			rej.Line = line
			out.Rejected = append(out.Rejected, *rej)
			continue
		}
		if m.ID == "" {
			out.Rejected = append(out.Rejected, Rejection{Line: line, Reason: ReasonMissingID})
			continue
		}
		if _, dup := seen[m.ID]; dup {
			out.Rejected = append(out.Rejected, Rejection{Line: line, ID: m.ID, Reason: ReasonDuplicateID})
			continue
		}
		seen[m.ID] = struct{}{}
		out.Members = append(out.Members, m)
	}
	return out
}

// text：把原始标量转换为去除首尾空白的字符串；nil 为空串
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// number：把原始标量解析为有限浮点数
func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		n, ok := numeric(x)
		if !ok {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numeric：其余整数/浮点种类（含以其为底层类型的自定义类型）
func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func latitude(v any) (float64, bool) {
	f, ok := number(v)
	if !ok || f < -90 || f > 90 {
		return 0, false
	}
	return f, true
}

func longitude(v any) (float64, bool) {
	f, ok := number(v)
	if !ok || f < -180 || f > 180 {
		return 0, false
	}
	return f, true
}
