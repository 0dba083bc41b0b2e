package model_test

import (
	"testing"
	"time"

	model "github.com/okian/roster/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecordRow(t *testing.T) {
	convey.Convey("Given a finalized record", t, func() {
		rec := model.Record{
			ID:           "X123",
			Name:         "Dana",
			WorkArea:     "Back-end",
			Technologies: []string{"Java", "Spring", "Java"},
			SubmittedAt:  "2025-12-04T18:30:00.000Z",
		}

		convey.Convey("When flattening it to a row", func() {
			row := rec.Row()

			convey.Convey("Then technologies are joined without deduplication", func() {
				convey.So(row.Technologies, convey.ShouldEqual, "Java, Spring, Java")
				convey.So(row.ID, convey.ShouldEqual, "X123")
				convey.So(row.SubmittedAt, convey.ShouldEqual, rec.SubmittedAt)
			})

			convey.Convey("And values follow the header order", func() {
				convey.So(len(row.Values()), convey.ShouldEqual, len(model.Header))
				convey.So(row.Values(), convey.ShouldResemble, []string{
					"X123", "Dana", "Back-end", "Java, Spring, Java", "2025-12-04T18:30:00.000Z",
				})
			})
		})
	})
}

func TestDraft(t *testing.T) {
	convey.Convey("Given a draft", t, func() {
		d := model.Draft{ID: "a1", Name: "Dana", WorkArea: "backend", Technologies: []string{"Go"}}

		convey.Convey("When cloning it", func() {
			c := d.Clone()
			c.Technologies[0] = "Rust"

			convey.Convey("Then the original is untouched", func() {
				convey.So(d.Technologies[0], convey.ShouldEqual, "Go")
			})
		})

		convey.Convey("When checking emptiness", func() {
			convey.So(d.IsEmpty(), convey.ShouldBeFalse)
			convey.So(model.Draft{}.IsEmpty(), convey.ShouldBeTrue)
			convey.So(model.Draft{Technologies: []string{}}.IsEmpty(), convey.ShouldBeTrue)
		})
	})
}

func TestFormatTimestamp(t *testing.T) {
	convey.Convey("Given a time in a non-UTC zone", t, func() {
		loc := time.FixedZone("CET", 3600)
		ts := time.Date(2025, 12, 4, 19, 30, 0, 123_456_789, loc)

		convey.Convey("Then it is rendered in UTC with milliseconds", func() {
			convey.So(model.FormatTimestamp(ts), convey.ShouldEqual, "2025-12-04T18:30:00.123Z")
		})
	})
}
