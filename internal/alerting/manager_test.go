package alerting_test

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marpol/driftwatch/internal/alerting"
	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

// captureSink records every delivered alert.
type captureSink struct {
	mu     sync.Mutex
	alerts []model.Alert
}

func (s *captureSink) Deliver(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func driftEvidence(mmsi string, ts int64) model.Evidence {
	return model.Evidence{
		MMSI:      mmsi,
		Timestamp: ts,
		Anomalies: []model.Anomaly{model.AnomalyDrifting},
		Current: model.PositionReport{
			Time: ts, SOG: 0, COG: 10, Lat: 59.123456789, Lon: 24.987654321,
		},
		Previous: model.PositionReport{
			Time: ts - 600, SOG: 0, COG: 10, Lat: 59.12, Lon: 24.98,
		},
		DriftSpeedMS: 0.9,
	}
}

func TestManagerCooldown(t *testing.T) {
	Convey("Given a manager with a 600 second cooldown", t, func() {
		ctx := context.Background()
		sink := &captureSink{}
		m := alerting.NewManager(
			alerting.WithCooldownWindow(600*time.Second),
			alerting.WithSinks(sink),
		)
		base := time.Unix(10_000, 0)

		Convey("When two events for one vessel are 60 seconds apart", func() {
			emitted1, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_000), base)
			emitted2, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_060), base.Add(60*time.Second))

			Convey("Then exactly one alert is emitted", func() {
				So(emitted1, ShouldBeTrue)
				So(emitted2, ShouldBeFalse)
				So(sink.count(), ShouldEqual, 1)
				So(m.Emitted(), ShouldEqual, 1)
				So(m.Suppressed(), ShouldEqual, 1)
			})
		})

		Convey("When two events for one vessel are 700 seconds apart", func() {
			emitted1, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_000), base)
			emitted2, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_700), base.Add(700*time.Second))

			Convey("Then both alerts are emitted", func() {
				So(emitted1, ShouldBeTrue)
				So(emitted2, ShouldBeTrue)
				So(sink.count(), ShouldEqual, 2)
			})
		})

		Convey("When suppression happens the cooldown clock does not restart", func() {
			m.MaybeAlert(ctx, driftEvidence("230000001", 10_000), base)
			m.MaybeAlert(ctx, driftEvidence("230000001", 10_500), base.Add(500*time.Second))
			// 650 s after the first emission, 150 s after the suppressed one.
			emitted, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_650), base.Add(650*time.Second))

			So(emitted, ShouldBeTrue)
			So(sink.count(), ShouldEqual, 2)
		})

		Convey("When two different vessels alert back to back", func() {
			emitted1, _ := m.MaybeAlert(ctx, driftEvidence("230000001", 10_000), base)
			emitted2, _ := m.MaybeAlert(ctx, driftEvidence("230000002", 10_001), base.Add(time.Second))

			Convey("Then cooldowns are independent per vessel", func() {
				So(emitted1, ShouldBeTrue)
				So(emitted2, ShouldBeTrue)
				So(sink.count(), ShouldEqual, 2)
			})
		})
	})
}

func TestManagerAlertRecord(t *testing.T) {
	Convey("Given a manager with a capture sink", t, func() {
		ctx := context.Background()
		sink := &captureSink{}
		m := alerting.NewManager(alerting.WithSinks(sink))

		Convey("When a drifting event is emitted", func() {
			ev := driftEvidence("230000001", 10_000)
			emitted, alert := m.MaybeAlert(ctx, ev, time.Unix(10_000, 0))
			So(emitted, ShouldBeTrue)

			Convey("Then the record carries the scored severity", func() {
				So(alert.VesselID, ShouldEqual, "230000001")
				So(alert.Timestamp, ShouldEqual, 10_000)
				So(alert.DangerScore, ShouldEqual, 3)
				So(alert.DangerLevel, ShouldEqual, "High")
				So(alert.Reason, ShouldEqual, "Drifting")
				So(alert.Indicators, ShouldResemble, []model.Anomaly{model.AnomalyDrifting})
				So(alert.ID, ShouldNotBeEmpty)
			})

			Convey("Then coordinates are rounded to six decimals", func() {
				So(alert.Location.Coordinates.Lat, ShouldEqual, 59.123457)
				So(alert.Location.Coordinates.Lon, ShouldEqual, 24.987654)
				So(alert.Location.ApproxLocation, ShouldEqual, "At sea")
			})

			Convey("Then the map link uses six-decimal formatting", func() {
				So(alert.Location.GoogleMaps, ShouldEqual,
					"https://www.google.com/maps/search/?api=1&query=59.123457,24.987654")
			})

			Convey("Then the metrics snapshot carries the evidence", func() {
				So(alert.Metrics.Speed.Current, ShouldEqual, 0)
				So(alert.Metrics.Course.Previous, ShouldEqual, 10)
				So(alert.Metrics.DriftSpeedMS, ShouldNotBeNil)
				So(*alert.Metrics.DriftSpeedMS, ShouldEqual, 0.9)
				So(alert.Metrics.SpeedDropPct, ShouldBeNil)
				So(alert.Metrics.CourseChangeDeg, ShouldBeNil)
			})
		})

		Convey("When a multi-anomaly event is emitted", func() {
			ev := driftEvidence("230000002", 20_000)
			ev.Anomalies = []model.Anomaly{model.AnomalySpeedDrop, model.AnomalyCourseChange}
			ev.SpeedDropPct = 75
			ev.CourseChangeDeg = 90

			_, alert := m.MaybeAlert(ctx, ev, time.Unix(20_000, 0))

			So(alert.DangerScore, ShouldEqual, 3)
			So(alert.Reason, ShouldEqual, "Speed Drop, Course Change")
			So(*alert.Metrics.SpeedDropPct, ShouldEqual, 75)
			So(*alert.Metrics.CourseChangeDeg, ShouldEqual, 90)
		})
	})
}

func TestMapLink(t *testing.T) {
	Convey("Given the map link renderer", t, func() {
		link := alerting.MapLink(59.1, -24.05)
		So(link, ShouldStartWith, "https://www.google.com/maps/search/?api=1&query=")
		So(strings.HasSuffix(link, "59.100000,-24.050000"), ShouldBeTrue)
	})
}

func TestRecorder(t *testing.T) {
	Convey("Given a recorder of size 3", t, func() {
		ctx := context.Background()
		r := alerting.NewRecorder(3)

		Convey("When five alerts arrive", func() {
			for i := 0; i < 5; i++ {
				_ = r.Deliver(ctx, model.Alert{ID: string(rune('a' + i))})
			}

			Convey("Then only the three newest remain, newest first", func() {
				So(r.Len(), ShouldEqual, 3)
				recent := r.Recent(0)
				So(len(recent), ShouldEqual, 3)
				So(recent[0].ID, ShouldEqual, "e")
				So(recent[2].ID, ShouldEqual, "c")
			})

			Convey("And a limit narrows the slice", func() {
				recent := r.Recent(1)
				So(len(recent), ShouldEqual, 1)
				So(recent[0].ID, ShouldEqual, "e")
			})
		})
	})
}

func TestMemoryCooldown(t *testing.T) {
	Convey("Given an empty cooldown store", t, func() {
		ctx := context.Background()
		c := alerting.NewMemoryCooldown()

		Convey("When a vessel has never alerted", func() {
			_, ok := c.LastAlert(ctx, "230000001")
			So(ok, ShouldBeFalse)
			So(c.Size(), ShouldEqual, 0)
		})

		Convey("When an alert time is recorded", func() {
			now := time.Unix(1000, 0)
			c.RecordAlert(ctx, "230000001", now)

			got, ok := c.LastAlert(ctx, "230000001")
			So(ok, ShouldBeTrue)
			So(got.Equal(now), ShouldBeTrue)
			So(c.Size(), ShouldEqual, 1)
		})
	})
}
