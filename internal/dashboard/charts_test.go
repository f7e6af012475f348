package dashboard

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

func TestNewBarChart(t *testing.T) {
	Convey("Given two machine sums", t, func() {
		c := NewBarChart([]Point{{Label: "a", CO2: 1}, {Label: "b", CO2: 0.5}})

		Convey("Then the tallest bar fills the plot height", func() {
			So(len(c.Bars), ShouldEqual, 2)
			So(c.Bars[0].Height, ShouldAlmostEqual, chartHeight-2*chartPadding)
			So(c.Bars[1].Height, ShouldAlmostEqual, (chartHeight-2*chartPadding)/2)
			So(c.Bars[0].Y+c.Bars[0].Height, ShouldAlmostEqual, c.Baseline)
		})
	})

	Convey("Given no points", t, func() {
		Convey("Then no bars are produced", func() {
			So(NewBarChart(nil).Bars, ShouldBeEmpty)
		})
	})
}

func TestNewLineChart(t *testing.T) {
	Convey("Given three daily sums", t, func() {
		c := NewLineChart([]Point{{Label: "d1", CO2: 0}, {Label: "d2", CO2: 2}, {Label: "d3", CO2: 1}})

		Convey("Then dots span the plot width", func() {
			So(len(c.Dots), ShouldEqual, 3)
			So(c.Dots[0].X, ShouldAlmostEqual, chartPadding)
			So(c.Dots[2].X, ShouldAlmostEqual, chartWidth-chartPadding)
			So(c.Dots[0].Y, ShouldAlmostEqual, c.Baseline)
			So(c.Dots[1].Y, ShouldAlmostEqual, chartPadding)
			So(len(strings.Fields(c.Points)), ShouldEqual, 3)
		})
	})

	Convey("Given a single day", t, func() {
		c := NewLineChart([]Point{{Label: "d1", CO2: 1}})

		Convey("Then the dot is centred", func() {
			So(c.Dots[0].X, ShouldAlmostEqual, chartWidth/2)
		})
	})
}

func TestNewPieChart(t *testing.T) {
	Convey("Given a mixed breakdown", t, func() {
		c := NewPieChart([]TierCount{{emission.Green, 2}, {emission.Yellow, 0}, {emission.Red, 2}})

		Convey("Then empty tiers are skipped and percentages sum to 100", func() {
			So(c.Total, ShouldEqual, 4)
			So(len(c.Slices), ShouldEqual, 2)
			So(c.Slices[0].Percent+c.Slices[1].Percent, ShouldAlmostEqual, 100)
			So(c.Slices[0].Fill, ShouldEqual, "#00c853")
			So(c.Slices[0].Path, ShouldStartWith, "M ")
		})
	})

	Convey("Given a single tier", t, func() {
		c := NewPieChart([]TierCount{{emission.Green, 0}, {emission.Yellow, 0}, {emission.Red, 3}})

		Convey("Then it is drawn as a full circle", func() {
			So(len(c.Slices), ShouldEqual, 1)
			So(c.Slices[0].Full, ShouldBeTrue)
		})
	})

	Convey("Given no builds", t, func() {
		c := NewPieChart([]TierCount{{emission.Green, 0}})

		Convey("Then there are no slices", func() {
			So(c.Slices, ShouldBeEmpty)
		})
	})
}
