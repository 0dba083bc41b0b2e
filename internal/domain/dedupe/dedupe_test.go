package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/roster/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw ids", t, func() {
		Convey("Then they are trimmed and upper-cased", func() {
			So(dedupe.Normalize("  ab12 "), ShouldEqual, "AB12")
			So(dedupe.Normalize("x123"), ShouldEqual, "X123")
			So(dedupe.Normalize("   "), ShouldEqual, "")
		})

		Convey("Then full Unicode case mapping is applied", func() {
			So(dedupe.Normalize("straße"), ShouldEqual, "STRASSE")
			So(dedupe.Normalize("élodie"), ShouldEqual, "ÉLODIE")
		})
	})
}

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(8))

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
			So(d.IDs(), ShouldBeEmpty)
		})

		Convey("When recording an id", func() {
			seen := d.SeenAndRecord(ctx, "ab12")

			Convey("Then it is newly recorded in normalized form", func() {
				So(seen, ShouldBeFalse)
				So(d.IDs(), ShouldResemble, []string{"AB12"})
			})

			Convey("And the same id in another case is seen", func() {
				So(d.Seen(ctx, "AB12"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, " Ab12 "), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an id", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")
			d.Unrecord(ctx, "B")

			Convey("Then order of the remaining ids is kept", func() {
				So(d.IDs(), ShouldResemble, []string{"A", "C"})
				So(d.Seen(ctx, "b"), ShouldBeFalse)
			})

			Convey("And unknown ids are ignored", func() {
				d.Unrecord(ctx, "zzz")
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When loading persisted ids", func() {
			d.Load(ctx, []string{"x1", "X2", "x1", "", "x3"})

			Convey("Then duplicates and blanks are skipped in order", func() {
				So(d.IDs(), ShouldResemble, []string{"X1", "X2", "X3"})
			})
		})

		Convey("When IDs is mutated by the caller", func() {
			d.SeenAndRecord(ctx, "keep")
			ids := d.IDs()
			ids[0] = "changed"

			Convey("Then the deduper is unaffected", func() {
				So(d.IDs(), ShouldResemble, []string{"KEEP"})
			})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given many goroutines recording overlapping ids", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var fresh atomic.Int64
		var wg sync.WaitGroup

		for g := 0; g < 16; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					id := fmt.Sprintf("id-%d", i)
					if g%2 == 0 {
						id = fmt.Sprintf("ID-%d", i)
					}
					if !d.SeenAndRecord(context.Background(), id) {
						fresh.Add(1)
					}
				}
			}(g)
		}
		wg.Wait()

		Convey("Then each normalized id is recorded exactly once", func() {
			So(fresh.Load(), ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
