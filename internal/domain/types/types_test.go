package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestSubmissionDecoding(t *testing.T) {
	convey.Convey("Given submissions from different clients", t, func() {
		convey.Convey("When only matricule is sent", func() {
			var s types.Submission
			err := json.Unmarshal([]byte(`{"matricule":"x1","technologies":["Go","Java"]}`), &s)

			convey.Convey("Then it is used as the id", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.ID, convey.ShouldEqual, "x1")
				convey.So([]string(s.Technologies), convey.ShouldResemble, []string{"Go", "Java"})
			})
		})

		convey.Convey("When both id and matricule are sent", func() {
			var s types.Submission
			_ = json.Unmarshal([]byte(`{"id":"a","matricule":"b"}`), &s)

			convey.Convey("Then id wins", func() {
				convey.So(s.ID, convey.ShouldEqual, "a")
			})
		})

		convey.Convey("When technologies arrive pre-joined", func() {
			var s types.Submission
			_ = json.Unmarshal([]byte(`{"id":"a","technologies":"Java, Spring"}`), &s)

			convey.Convey("Then the string is kept as one value", func() {
				convey.So(model.JoinTechnologies(s.Technologies), convey.ShouldEqual, "Java, Spring")
			})
		})

		convey.Convey("When technologies is neither a string nor a list", func() {
			var s types.Submission
			err := json.Unmarshal([]byte(`{"id":"a","technologies":42}`), &s)

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSubmissionFromRecord(t *testing.T) {
	convey.Convey("Given a finalized record", t, func() {
		rec := model.Record{ID: "X1", Name: "Dana", WorkArea: "Back-end", Technologies: []string{"Go"}, SubmittedAt: "2025-12-04T18:30:00.000Z"}

		convey.Convey("Then the wire payload carries the same values", func() {
			s := types.SubmissionFromRecord(rec)
			convey.So(s.ID, convey.ShouldEqual, "X1")
			convey.So(s.SubmittedAt, convey.ShouldEqual, rec.SubmittedAt)
			convey.So([]string(s.Technologies), convey.ShouldResemble, rec.Technologies)
		})
	})
}
