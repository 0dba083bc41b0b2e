package delivery_test

import (
	"testing"
	"time"

	"github.com/okian/roster/internal/domain/delivery"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		l := delivery.NewLedger()
		base := time.Date(2025, 12, 4, 18, 0, 0, 0, time.UTC)

		Convey("When outcomes are recorded", func() {
			l.Record(delivery.Outcome{ID: "b2", Status: delivery.StatusPending, At: base})
			l.Record(delivery.Outcome{ID: "a1", Status: delivery.StatusAccepted, At: base.Add(time.Second)})
			l.Record(delivery.Outcome{ID: "B2", Status: delivery.StatusFailed, Error: "timeout", At: base.Add(2 * time.Second)})

			Convey("Then the latest outcome per normalized id wins", func() {
				o, ok := l.Get("b2")
				So(ok, ShouldBeTrue)
				So(o.ID, ShouldEqual, "B2")
				So(o.Status, ShouldEqual, delivery.StatusFailed)
				So(o.Error, ShouldEqual, "timeout")
			})

			Convey("Then the snapshot is ordered by time", func() {
				snap := l.Snapshot()
				So(snap, ShouldHaveLength, 2)
				So(snap[0].ID, ShouldEqual, "A1")
				So(snap[1].ID, ShouldEqual, "B2")
			})

			Convey("Then counts are grouped by status", func() {
				So(l.Counts(), ShouldResemble, map[delivery.Status]int{
					delivery.StatusAccepted: 1,
					delivery.StatusFailed:   1,
				})
			})
		})

		Convey("When an outcome has no timestamp", func() {
			l.Record(delivery.Outcome{ID: "c3", Status: delivery.StatusDuplicate})

			Convey("Then one is assigned", func() {
				o, _ := l.Get("C3")
				So(o.At.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the id is unknown", func() {
			_, ok := l.Get("nope")
			So(ok, ShouldBeFalse)
		})
	})
}
