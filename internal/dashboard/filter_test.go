package dashboard

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRange(t *testing.T) {
	Convey("Given range query values", t, func() {
		Convey("When both bounds are valid", func() {
			r, err := ParseRange("2025-07-01", "2025-07-02")

			Convey("Then they are parsed as UTC dates", func() {
				So(err, ShouldBeNil)
				So(r.From, ShouldEqual, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
				So(r.To, ShouldEqual, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When bounds are empty", func() {
			r, err := ParseRange("", "")

			Convey("Then the range is open", func() {
				So(err, ShouldBeNil)
				So(r.From.IsZero(), ShouldBeTrue)
				So(r.To.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When a bound is malformed", func() {
			_, err := ParseRange("07/01/2025", "")

			Convey("Then an invalid date error is returned", func() {
				So(errors.Is(err, ErrInvalidDate), ShouldBeTrue)
			})
		})

		Convey("When the range is inverted", func() {
			_, err := ParseRange("2025-07-03", "2025-07-01")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidDate), ShouldBeTrue)
			})
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given records over three days", t, func() {
		recs := sampleStats().Emissions

		Convey("When filtering a single inclusive day", func() {
			r, _ := ParseRange("2025-07-02", "2025-07-02")
			got := Filter(recs, r)

			Convey("Then only that day's records remain in order", func() {
				So(len(got), ShouldEqual, 2)
				So(got[0].Timestamp, ShouldEqual, "2025-07-02T09:00:00Z")
				So(got[1].Timestamp, ShouldEqual, "2025-07-02T18:00:00Z")
			})
		})

		Convey("When only a lower bound is set", func() {
			r, _ := ParseRange("2025-07-03", "")
			got := Filter(recs, r)

			Convey("Then the upper side is open", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].Repo, ShouldEqual, "ml-service")
			})
		})

		Convey("When the range is open", func() {
			got := Filter(recs, DateRange{})

			Convey("Then every record is kept", func() {
				So(len(got), ShouldEqual, len(recs))
			})
		})

		Convey("When a record has a bad timestamp", func() {
			bad := append(recs, rec("x", "ubuntu-latest", 0.1, "yesterday"))
			got := Filter(bad, DateRange{})

			Convey("Then it is dropped", func() {
				So(len(got), ShouldEqual, len(recs))
			})
		})

		Convey("When a timestamp carries an offset", func() {
			r, _ := ParseRange("2025-07-01", "2025-07-01")
			got := Filter(append(recs[:0:0], rec("y", "ubuntu-latest", 0.1, "2025-07-02T01:00:00+02:00")), r)

			Convey("Then the UTC date decides", func() {
				So(len(got), ShouldEqual, 1)
			})
		})
	})
}

func TestBounds(t *testing.T) {
	Convey("Given sample records", t, func() {
		minDate, maxDate, ok := Bounds(sampleStats().Emissions)

		Convey("Then bounds are the first and last dates", func() {
			So(ok, ShouldBeTrue)
			So(minDate.Format(DateLayout), ShouldEqual, "2025-07-01")
			So(maxDate.Format(DateLayout), ShouldEqual, "2025-07-03")
		})
	})

	Convey("Given no records", t, func() {
		_, _, ok := Bounds(nil)

		Convey("Then no bounds exist", func() {
			So(ok, ShouldBeFalse)
		})
	})
}
