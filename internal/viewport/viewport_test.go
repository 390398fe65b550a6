package viewport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"chapter-map/internal/member"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type ViewportSuite struct{}

var _ = Suite(&ViewportSuite{})

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func relocated() member.Member {
	return member.Member{
		ID:     "1",
		Origin: member.Origin{Country: "Chile", Coordinates: member.LatLng{Lat: -33.4, Lng: -70.6}},
		Current: &member.Location{
			Country:     "Brazil",
			Coordinates: &member.LatLng{Lat: -23.5, Lng: -46.6},
		},
	}
}

func (s *ViewportSuite) TestOriginOnlyIsPoint(c *C) {
	m := member.Member{
		ID:     "1",
		Origin: member.Origin{Country: "Chile", Coordinates: member.LatLng{Lat: -33.4, Lng: -70.6}},
	}
	r := ForMember(m)

	c.Assert(r.Kind, Equals, KindPoint)
	c.Assert(r.Center, Equals, member.LatLng{Lat: -33.4, Lng: -70.6})
	c.Assert(r.Zoom, Equals, MemberZoom)
	c.Assert(r.Bounds, IsNil)
	c.Assert(r.Steps, HasLen, 1)
	c.Assert(r.Steps[0].Op, Equals, OpSetView)
	c.Assert(*r.Steps[0].Center, Equals, r.Center)
}

func (s *ViewportSuite) TestSameCountryIsPoint(c *C) {
	m := relocated()
	m.Current.Country = "Chile"
	r := ForMember(m)
	c.Assert(r.Kind, Equals, KindPoint)
	c.Assert(r.Center, Equals, m.Origin.Coordinates)
}

func (s *ViewportSuite) TestMissingCurrentCoordinatesIsPoint(c *C) {
	m := relocated()
	m.Current.Coordinates = nil
	r := ForMember(m)
	c.Assert(r.Kind, Equals, KindPoint)
}

func (s *ViewportSuite) TestRelocatedCoversBothPoints(c *C) {
	m := relocated()
	r := ForMember(m)

	c.Assert(r.Kind, Equals, KindBounds)
	c.Assert(r.Bounds, NotNil)
	c.Assert(r.Bounds.Contains(m.Origin.Coordinates), Equals, true)
	c.Assert(r.Bounds.Contains(*m.Current.Coordinates), Equals, true)

	// two degrees of margin on every side
	c.Assert(near(r.Bounds.SouthWest.Lat, -33.4-PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Bounds.SouthWest.Lng, -70.6-PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Bounds.NorthEast.Lat, -23.5+PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Bounds.NorthEast.Lng, -46.6+PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))

	c.Assert(near(r.Center.Lat, (-33.4-23.5)/2), Equals, true, Commentf("%v", r.Center))
	c.Assert(near(r.Center.Lng, (-70.6-46.6)/2), Equals, true, Commentf("%v", r.Center))
}

func (s *ViewportSuite) TestRelocatedIsStagedFitThenPan(c *C) {
	r := ForMember(relocated())

	c.Assert(r.Steps, HasLen, 2)
	c.Assert(r.Steps[0].Op, Equals, OpFitBounds)
	c.Assert(*r.Steps[0].Bounds, Equals, *r.Bounds)
	c.Assert(r.Steps[0].DelayMs, Equals, int64(0))
	c.Assert(r.Steps[1].Op, Equals, OpPanTo)
	c.Assert(*r.Steps[1].Center, Equals, r.Center)
	c.Assert(r.Steps[1].DelayMs, Equals, int64(100))
}

func (s *ViewportSuite) TestPaddingClampsAtPole(c *C) {
	m := relocated()
	m.Origin.Coordinates = member.LatLng{Lat: 89.5, Lng: 10}
	r := ForMember(m)
	c.Assert(r.Bounds.NorthEast.Lat <= 90+eps, Equals, true, Commentf("%v", r.Bounds))
	c.Assert(r.Bounds.Contains(m.Origin.Coordinates), Equals, true, Commentf("%v", r.Bounds))
}

func (s *ViewportSuite) TestRelocationAcrossPacificDoesNotWrap(c *C) {
	m := relocated()
	m.Current = &member.Location{Country: "New Zealand", Coordinates: &member.LatLng{Lat: -36.8, Lng: 174.7}}
	r := ForMember(m)

	c.Assert(r.Kind, Equals, KindBounds)
	c.Assert(r.Bounds.SouthWest.Lng < r.Bounds.NorthEast.Lng, Equals, true, Commentf("%v", r.Bounds))
	c.Assert(r.Bounds.Contains(m.Origin.Coordinates), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(r.Bounds.Contains(*m.Current.Coordinates), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(r.Bounds.Contains(r.Center), Equals, true, Commentf("%v", r.Center))

	c.Assert(near(r.Bounds.SouthWest.Lng, -70.6-PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Bounds.NorthEast.Lng, 174.7+PaddingDegrees), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Center.Lng, (-70.6+174.7)/2), Equals, true, Commentf("%v", r.Center))
	c.Assert(near(r.Center.Lat, (-33.4-36.8)/2), Equals, true, Commentf("%v", r.Center))
}

func (s *ViewportSuite) TestPaddingClampsAtAntimeridian(c *C) {
	m := relocated()
	m.Origin.Coordinates = member.LatLng{Lat: 10, Lng: -179.5}
	m.Current.Coordinates = &member.LatLng{Lat: 12, Lng: 179.5}
	r := ForMember(m)

	c.Assert(near(r.Bounds.SouthWest.Lng, -180), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(near(r.Bounds.NorthEast.Lng, 180), Equals, true, Commentf("%v", r.Bounds))
	c.Assert(r.Bounds.Contains(m.Origin.Coordinates), Equals, true)
	c.Assert(r.Bounds.Contains(*m.Current.Coordinates), Equals, true)
}

func (s *ViewportSuite) TestWorld(c *C) {
	r := World()
	c.Assert(r.Kind, Equals, KindWorld)
	c.Assert(r.Center, Equals, WorldCenter)
	c.Assert(r.Zoom, Equals, WorldZoom)
	c.Assert(r.Steps, HasLen, 1)
	c.Assert(r.Steps[0].Op, Equals, OpSetView)
}

func (s *ViewportSuite) TestForCountry(c *C) {
	t := Builtin()

	r := t.ForCountry("Chile")
	c.Assert(r.Kind, Equals, KindRegion)
	reg, ok := t.Lookup("chile")
	c.Assert(ok, Equals, true)
	c.Assert(r.Center, Equals, reg.Center)
	c.Assert(*r.Bounds, Equals, reg.Bounds)
	c.Assert(r.Steps[0].Op, Equals, OpFitBounds)
	c.Assert(r.Bounds.Contains(r.Center), Equals, true)
}

func (s *ViewportSuite) TestForCountryUnknownFallsBackToWorld(c *C) {
	t := Builtin()
	c.Assert(t.ForCountry("Iceland"), DeepEquals, World())
	c.Assert(t.ForCountry(""), DeepEquals, World())

	var none *Table
	c.Assert(none.ForCountry("Chile"), DeepEquals, World())
}

func (s *ViewportSuite) TestBuiltinCentersInsideBounds(c *C) {
	t := Builtin()
	for _, name := range t.Names() {
		reg, _ := t.Lookup(name)
		c.Assert(validRegion(reg), Equals, true, Commentf("%s", name))
		c.Assert(reg.Bounds.Contains(reg.Center), Equals, true, Commentf("%s", name))
	}
}

func (s *ViewportSuite) TestParseRegionsOverrides(c *C) {
	t, err := ParseRegions([]byte(`
regions:
  - name: Chile
    center: [-30, -71]
    bounds: [[-56, -76], [-17, -66]]
  - name: Spain
    center: [40.4, -3.7]
    bounds: [[36, -9.3], [43.8, 3.3]]
`))
	c.Assert(err, IsNil)

	chile, ok := t.Lookup("Chile")
	c.Assert(ok, Equals, true)
	c.Assert(chile.Center, Equals, member.LatLng{Lat: -30, Lng: -71})

	spain := t.ForCountry("spain")
	c.Assert(spain.Kind, Equals, KindRegion)
	c.Assert(spain.Bounds.NorthEast, Equals, member.LatLng{Lat: 43.8, Lng: 3.3})

	_, ok = t.Lookup("Peru")
	c.Assert(ok, Equals, true)
}

func (s *ViewportSuite) TestParseRegionsRejectsBadEntries(c *C) {
	_, err := ParseRegions([]byte("regions:\n  - name: ''\n"))
	c.Assert(err, ErrorMatches, ".*empty name.*")

	_, err = ParseRegions([]byte("regions:\n  - name: Mars\n    center: [120, 0]\n    bounds: [[0, 0], [1, 1]]\n"))
	c.Assert(err, ErrorMatches, ".*out of range.*")

	_, err = ParseRegions([]byte("regions: [oops"))
	c.Assert(err, NotNil)
}

func (s *ViewportSuite) TestLoadRegions(c *C) {
	t, err := LoadRegions("")
	c.Assert(err, IsNil)
	c.Assert(t.Names(), DeepEquals, Builtin().Names())

	path := filepath.Join(c.MkDir(), "regions.yaml")
	c.Assert(os.WriteFile(path, []byte("regions:\n  - name: Portugal\n    center: [39.5, -8]\n    bounds: [[37, -9.5], [42.2, -6.2]]\n"), 0o644), IsNil)
	t, err = LoadRegions(path)
	c.Assert(err, IsNil)
	_, ok := t.Lookup("Portugal")
	c.Assert(ok, Equals, true)

	_, err = LoadRegions(filepath.Join(c.MkDir(), "missing.yaml"))
	c.Assert(err, NotNil)
}
