package store_test

import (
	"context"
	"testing"

	"github.com/pitwall/tyretrace/internal/adapters/store"
	"github.com/pitwall/tyretrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSampleStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := store.New()

		Convey("Then unknown drivers yield empty histories", func() {
			So(s.History(ctx, "VER"), ShouldBeEmpty)
			So(s.Drivers(ctx), ShouldBeEmpty)
			So(s.Len(ctx), ShouldEqual, 0)
		})

		Convey("When recording samples for two drivers", func() {
			s.Record(ctx, "VER", model.Sample{SequenceIndex: 0, TyreAge: 1, RaceLap: 1})
			s.Record(ctx, "ALO", model.Sample{SequenceIndex: 0, TyreAge: 1, RaceLap: 1})
			s.Record(ctx, "VER", model.Sample{SequenceIndex: 1, TyreAge: 2, RaceLap: 2})

			Convey("Then histories are retrievable in arrival order", func() {
				h := s.History(ctx, "VER")
				So(h, ShouldHaveLength, 2)
				So(h[0].SequenceIndex, ShouldEqual, 0)
				So(h[1].SequenceIndex, ShouldEqual, 1)
			})

			Convey("And driver codes come back sorted", func() {
				So(s.Drivers(ctx), ShouldResemble, []string{"ALO", "VER"})
			})

			Convey("And Clear discards everything", func() {
				s.Clear(ctx)
				So(s.Drivers(ctx), ShouldBeEmpty)
				So(s.Len(ctx), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a store at the default retention cap", t, func() {
		s := store.New()

		Convey("When 1005 samples are recorded for one driver", func() {
			for i := 0; i < 1005; i++ {
				s.Record(ctx, "HAM", model.Sample{SequenceIndex: int64(i), TyreAge: i, RaceLap: i})
			}

			Convey("Then exactly 1000 remain, the most recent, in order", func() {
				h := s.History(ctx, "HAM")
				So(h, ShouldHaveLength, 1000)
				So(h[0].SequenceIndex, ShouldEqual, 5)
				So(h[999].SequenceIndex, ShouldEqual, 1004)
				for i := 1; i < len(h); i++ {
					So(h[i].SequenceIndex, ShouldEqual, h[i-1].SequenceIndex+1)
				}
			})
		})
	})

	Convey("Given a store with a custom retention cap", t, func() {
		s := store.New(store.WithRetentionCap(3))

		Convey("When more samples than the cap arrive", func() {
			for i := 0; i < 5; i++ {
				s.Record(ctx, "NOR", model.Sample{SequenceIndex: int64(i)})
			}

			Convey("Then only the most recent cap's worth remain", func() {
				h := s.History(ctx, "NOR")
				So(h, ShouldHaveLength, 3)
				So(h[0].SequenceIndex, ShouldEqual, 2)
				So(s.Len(ctx), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a snapshot of the store", t, func() {
		s := store.New()
		s.Record(ctx, "VER", model.Sample{SequenceIndex: 0, RaceLap: 1})
		snap := s.Snapshot(ctx)

		Convey("When the store mutates afterwards", func() {
			s.Record(ctx, "VER", model.Sample{SequenceIndex: 1, RaceLap: 2})

			Convey("Then the snapshot is unaffected", func() {
				So(snap["VER"], ShouldHaveLength, 1)
				So(s.History(ctx, "VER"), ShouldHaveLength, 2)
			})
		})
	})
}
