package types_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/carboncost/carboncost/internal/domain/emission"
	types "github.com/carboncost/carboncost/internal/domain/types"
)

func TestBadge(t *testing.T) {
	Convey("Given a tier", t, func() {
		Convey("When building a badge for each tier", func() {
			Convey("Then message and color follow the tier", func() {
				So(types.NewBadge(emission.Green), ShouldResemble, types.Badge{SchemaVersion: 1, Label: "CO2", Message: "Green", Color: "brightgreen"})
				So(types.NewBadge(emission.Yellow).Color, ShouldEqual, "yellow")
				So(types.NewBadge(emission.Red).Color, ShouldEqual, "red")
			})
		})

		Convey("When no data exists", func() {
			b := types.NoDataBadge()

			Convey("Then the badge is grey", func() {
				So(b.Message, ShouldEqual, "No Data")
				So(b.Color, ShouldEqual, "lightgrey")
			})
		})

		Convey("When encoding a badge", func() {
			raw, err := json.Marshal(types.NewBadge(emission.Red))
			So(err, ShouldBeNil)

			Convey("Then it uses the shields.io endpoint field names", func() {
				So(string(raw), ShouldEqual, `{"schemaVersion":1,"label":"CO2","message":"Red","color":"red"}`)
			})
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a stats payload", t, func() {
		s := types.Stats{
			TotalCO2:    0.06,
			AverageCO2:  0.06,
			BadgeCounts: map[string]int{"Green": 1, "Yellow": 0, "Red": 0},
			Emissions:   []emission.Record{},
		}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			Convey("Then the wire field names are used", func() {
				So(string(raw), ShouldContainSubstring, `"total_co2":0.06`)
				So(string(raw), ShouldContainSubstring, `"average_co2":0.06`)
				So(string(raw), ShouldContainSubstring, `"badge_counts":{`)
				So(string(raw), ShouldContainSubstring, `"emissions":[]`)
			})
		})
	})
}
