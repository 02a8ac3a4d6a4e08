package detect_test

import (
	"context"
	"testing"

	"github.com/marpol/driftwatch/internal/domain/detect"
	"github.com/marpol/driftwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// pair builds a (current, previous) report pair 1000 seconds apart at a
// fixed position, under way using engine.
func pair() (model.PositionReport, model.PositionReport) {
	previous := model.PositionReport{
		Time: 1000, SOG: 10, COG: 90, NavStat: model.NavStatUnderWayEngine,
		Lat: 59.62, Lon: 24.51,
	}
	current := previous
	current.Time = 2000
	return current, previous
}

func TestDetectorGuards(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := detect.NewDetector()
		ctx := context.Background()

		Convey("When the vessel is not under way using engine", func() {
			current, previous := pair()
			current.NavStat = 1
			current.SOG = 0
			previous.SOG = 10 // would otherwise be a 100% drop

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Empty(), ShouldBeTrue)
		})

		Convey("When the reports arrive out of order", func() {
			current, previous := pair()
			current.Time = previous.Time // zero elapsed
			current.SOG = 0

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Empty(), ShouldBeTrue)

			current.Time = previous.Time - 60 // negative elapsed
			ev = d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Empty(), ShouldBeTrue)
		})
	})
}

func TestDetectorSpeedDrop(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := detect.NewDetector()
		ctx := context.Background()

		Convey("When speed drops 60 percent", func() {
			current, previous := pair()
			previous.SOG = 10
			current.SOG = 4

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeTrue)
			So(ev.SpeedDropPct, ShouldAlmostEqual, 60)
		})

		Convey("When speed drops only 40 percent", func() {
			current, previous := pair()
			previous.SOG = 10
			current.SOG = 6

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeFalse)
		})

		Convey("When the previous speed was zero", func() {
			current, previous := pair()
			previous.SOG = 0
			current.SOG = 8 // a rise, and a would-be division by zero

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeFalse)
		})

		Convey("When the speed rises", func() {
			current, previous := pair()
			previous.SOG = 5
			current.SOG = 12

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeFalse)
		})
	})
}

func TestDetectorCourseChange(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := detect.NewDetector()
		ctx := context.Background()

		Convey("When the course swings 50 degrees", func() {
			current, previous := pair()
			previous.COG = 10
			current.COG = 60

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyCourseChange), ShouldBeTrue)
			So(ev.CourseChangeDeg, ShouldAlmostEqual, 50)
		})

		Convey("When the course swings only 30 degrees", func() {
			current, previous := pair()
			previous.COG = 10
			current.COG = 40

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyCourseChange), ShouldBeFalse)
		})

		Convey("When the course wraps around north", func() {
			current, previous := pair()
			previous.COG = 350
			current.COG = 40 // 50 degrees the short way

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyCourseChange), ShouldBeTrue)
		})
	})
}

func TestDetectorDrift(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := detect.NewDetector()
		ctx := context.Background()

		// 0.009 degrees of latitude is very nearly 1000 m, so over the
		// 1000 s pair spacing the drift speed is about 1 m/s.
		const driftDegLat = 0.009

		Convey("When a zero-speed vessel displaces about 1 m/s", func() {
			current, previous := pair()
			previous.SOG = 0
			current.SOG = 0
			current.COG = previous.COG // keep the course rule out of it
			current.Lat = previous.Lat + driftDegLat

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyDrifting), ShouldBeTrue)
			So(ev.DriftSpeedMS, ShouldAlmostEqual, 1.0, 0.01)
		})

		Convey("When the displacement stays under the threshold", func() {
			current, previous := pair()
			previous.SOG = 0
			current.SOG = 0
			current.Lat = previous.Lat + driftDegLat*0.4 // about 0.4 m/s

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyDrifting), ShouldBeFalse)
		})

		Convey("When either speed is non-zero", func() {
			current, previous := pair()
			previous.SOG = 0.1
			current.SOG = 0
			current.Lat = previous.Lat + driftDegLat

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalyDrifting), ShouldBeFalse)
		})
	})
}

func TestDetectorCombined(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := detect.NewDetector()
		ctx := context.Background()

		Convey("When a stop and a hard turn happen together", func() {
			current, previous := pair()
			previous.SOG = 10
			current.SOG = 2
			previous.COG = 0
			current.COG = 90

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeTrue)
			So(ev.Has(model.AnomalyCourseChange), ShouldBeTrue)
			So(len(ev.Anomalies), ShouldEqual, 2)
			So(ev.Timestamp, ShouldEqual, current.Time)
		})
	})
}

func TestDetectorCustomThresholds(t *testing.T) {
	Convey("Given a detector with tightened thresholds", t, func() {
		d := detect.NewDetector(
			detect.WithSpeedDropThreshold(20),
			detect.WithCourseChangeThreshold(10),
			detect.WithDriftSpeedThreshold(0.1),
		)
		ctx := context.Background()

		Convey("When changes below the defaults occur", func() {
			current, previous := pair()
			previous.SOG = 10
			current.SOG = 7 // 30% drop
			previous.COG = 0
			current.COG = 15

			ev := d.Evaluate(ctx, "230111111", current, previous)
			So(ev.Has(model.AnomalySpeedDrop), ShouldBeTrue)
			So(ev.Has(model.AnomalyCourseChange), ShouldBeTrue)
		})
	})
}
