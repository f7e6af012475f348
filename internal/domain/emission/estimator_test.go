package emission_test

import (
	"testing"

	"github.com/carboncost/carboncost/internal/domain/emission"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEstimator_Estimate(t *testing.T) {
	Convey("Given the default estimator", t, func() {
		est := emission.NewEstimator()

		Convey("When estimating for each known platform", func() {
			Convey("Then the result is duration times the platform factor", func() {
				for _, d := range []int{0, 1, 60, 300, 659, 10_000} {
					So(est.Estimate(d, "ubuntu"), ShouldEqual, float64(d)*0.0002)
					So(est.Estimate(d, "windows"), ShouldEqual, float64(d)*0.0003)
					So(est.Estimate(d, "macos"), ShouldEqual, float64(d)*0.00025)
				}
			})
		})

		Convey("When estimating for an unknown platform", func() {
			Convey("Then the default factor applies", func() {
				for _, d := range []int{0, 120, 600} {
					So(est.Estimate(d, "unknown"), ShouldEqual, float64(d)*0.0002)
					So(est.Estimate(d, "freebsd-13"), ShouldEqual, float64(d)*0.0002)
				}
			})
		})

		Convey("When estimating with hosted runner labels", func() {
			Convey("Then the label prefix selects the factor", func() {
				So(est.Factor("ubuntu-latest"), ShouldEqual, 0.0002)
				So(est.Factor("windows-2022"), ShouldEqual, 0.0003)
				So(est.Factor("macos-14"), ShouldEqual, 0.00025)
			})
		})

		Convey("When a 300 second ubuntu-latest job is estimated", func() {
			co2 := est.Estimate(300, "ubuntu-latest")

			Convey("Then it is 0.06 kg and Green", func() {
				So(co2, ShouldAlmostEqual, 0.06, 1e-12)
				So(emission.Classify(co2), ShouldEqual, emission.Green)
			})
		})
	})

	Convey("Given an estimator with configured factors", t, func() {
		est := emission.NewEstimator(
			emission.WithFactors(map[string]float64{"Linux": 0.001, "windows": -1}),
			emission.WithDefaultFactor(0.01),
		)

		Convey("Then runner OS names are normalized", func() {
			So(est.Factor("ubuntu-latest"), ShouldEqual, 0.001)
		})

		Convey("And negative factors are dropped in favour of the default", func() {
			So(est.Factor("windows"), ShouldEqual, 0.01)
		})
	})

	Convey("Given a zero default factor", t, func() {
		est := emission.NewEstimator(emission.WithDefaultFactor(0))

		Convey("Then unknown platforms estimate zero", func() {
			So(est.Factor("solaris"), ShouldEqual, 0)
			So(est.Estimate(300, "solaris"), ShouldEqual, 0)
		})

		Convey("And known platforms keep their factor", func() {
			So(est.Factor("ubuntu"), ShouldEqual, 0.0002)
		})
	})

	Convey("Given a negative default factor", t, func() {
		est := emission.NewEstimator(emission.WithDefaultFactor(-1))

		Convey("Then the built-in default is kept", func() {
			So(est.Factor("solaris"), ShouldEqual, emission.DefaultFactor)
		})
	})
}

func TestPlatform(t *testing.T) {
	Convey("Given machine types and runner OS names", t, func() {
		cases := map[string]string{
			"ubuntu-latest":  "ubuntu",
			"Linux":          "ubuntu",
			"Windows":        "windows",
			"windows-latest": "windows",
			"macOS":          "macos",
			"macos-latest":   "macos",
			" Ubuntu ":       "ubuntu",
			"solaris":        "solaris",
		}

		Convey("Then each resolves to its factor table key", func() {
			for in, want := range cases {
				So(emission.Platform(in), ShouldEqual, want)
			}
		})

		Convey("And MachineType builds the hosted label", func() {
			So(emission.MachineType("Linux"), ShouldEqual, "ubuntu-latest")
			So(emission.MachineType("macOS"), ShouldEqual, "macos-latest")
		})
	})
}
