package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/marpol/driftwatch/internal/adapters/repository"
	"github.com/marpol/driftwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func report(ts int64) model.PositionReport {
	return model.PositionReport{Time: ts, SOG: 10, COG: 90, Lat: 59.62, Lon: 24.51}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a new memory store", t, func() {
		ctx := context.Background()

		Convey("When a vessel has never been seen", func() {
			s := repository.NewMemoryStore()

			_, ok := s.Previous(ctx, "230000001")
			So(ok, ShouldBeFalse)
			_, ok = s.Latest(ctx, "230000001")
			So(ok, ShouldBeFalse)
			So(s.Len(ctx, "230000001"), ShouldEqual, 0)
			So(s.Vessels(ctx), ShouldEqual, 0)
		})

		Convey("When one report is appended", func() {
			s := repository.NewMemoryStore()
			s.Append(ctx, "230000001", report(1))

			Convey("Then the history exists but has no previous yet", func() {
				So(s.Len(ctx, "230000001"), ShouldEqual, 1)
				So(s.Vessels(ctx), ShouldEqual, 1)

				latest, ok := s.Latest(ctx, "230000001")
				So(ok, ShouldBeTrue)
				So(latest.Time, ShouldEqual, 1)

				_, ok = s.Previous(ctx, "230000001")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When two reports are appended", func() {
			s := repository.NewMemoryStore()
			s.Append(ctx, "230000001", report(1))
			s.Append(ctx, "230000001", report(2))

			Convey("Then previous returns the older of the two", func() {
				previous, ok := s.Previous(ctx, "230000001")
				So(ok, ShouldBeTrue)
				So(previous.Time, ShouldEqual, 1)
			})
		})

		Convey("When seven reports are appended at capacity five", func() {
			s := repository.NewMemoryStore()
			for ts := int64(1); ts <= 7; ts++ {
				s.Append(ctx, "230000001", report(ts))
			}

			Convey("Then only the five most recent remain in arrival order", func() {
				So(s.Len(ctx, "230000001"), ShouldEqual, 5)

				latest, _ := s.Latest(ctx, "230000001")
				So(latest.Time, ShouldEqual, 7)

				previous, _ := s.Previous(ctx, "230000001")
				So(previous.Time, ShouldEqual, 6)
			})
		})

		Convey("When a custom capacity is configured", func() {
			s := repository.NewMemoryStore(repository.WithCapacity(2))
			for ts := int64(1); ts <= 4; ts++ {
				s.Append(ctx, "230000001", report(ts))
			}

			So(s.Len(ctx, "230000001"), ShouldEqual, 2)
			previous, _ := s.Previous(ctx, "230000001")
			So(previous.Time, ShouldEqual, 3)
		})

		Convey("When several vessels interleave", func() {
			s := repository.NewMemoryStore()
			s.Append(ctx, "230000001", report(1))
			s.Append(ctx, "230000002", report(10))
			s.Append(ctx, "230000001", report(2))

			So(s.Vessels(ctx), ShouldEqual, 2)
			previous, ok := s.Previous(ctx, "230000001")
			So(ok, ShouldBeTrue)
			So(previous.Time, ShouldEqual, 1)
			_, ok = s.Previous(ctx, "230000002")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := repository.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			mmsi := string(rune('A' + id))
			for ts := int64(0); ts < 200; ts++ {
				s.Append(ctx, mmsi, report(ts))
				s.Previous(ctx, mmsi)
				s.Latest(ctx, mmsi)
			}
		}(g)
	}
	wg.Wait()

	if got := s.Vessels(ctx); got != 8 {
		t.Errorf("expected 8 vessels, got %d", got)
	}
}
