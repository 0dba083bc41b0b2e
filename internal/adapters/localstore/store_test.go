package localstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/roster/internal/adapters/localstore"
	"github.com/okian/roster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRow(id string) model.Row {
	return model.Row{
		ID:           id,
		Name:         "Dana",
		WorkArea:     "Back-end",
		Technologies: "Java",
		SubmittedAt:  "2025-12-04T18:30:00.000Z",
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "state.json")
		s := localstore.NewFileStore(path)

		Convey("When the file does not exist", func() {
			st, err := s.Load(ctx)

			Convey("Then it loads as empty state", func() {
				So(err, ShouldBeNil)
				So(st.Submissions, ShouldBeEmpty)
				So(st.SubmittedIDs, ShouldBeEmpty)
			})
		})

		Convey("When rows are appended", func() {
			So(s.Append(ctx, sampleRow("X123")), ShouldBeNil)
			So(s.Append(ctx, sampleRow("AB12")), ShouldBeNil)

			Convey("Then a fresh store sees both collections in order", func() {
				st, err := localstore.NewFileStore(path).Load(ctx)
				So(err, ShouldBeNil)
				So(st.SubmittedIDs, ShouldResemble, []string{"X123", "AB12"})
				So(st.Submissions, ShouldHaveLength, 2)
				So(st.Submissions[0], ShouldResemble, sampleRow("X123"))
			})

			Convey("Then the file uses the named collections", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				var raw map[string]json.RawMessage
				So(json.Unmarshal(data, &raw), ShouldBeNil)
				So(raw, ShouldContainKey, "submissions")
				So(raw, ShouldContainKey, "submitted_ids")
			})

			Convey("Then no temp files are left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})

		Convey("When the file is corrupt", func() {
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)
			_, err := s.Load(ctx)

			Convey("Then loading fails with ErrCorruptState", func() {
				So(errors.Is(err, localstore.ErrCorruptState), ShouldBeTrue)
			})

			Convey("And appending does not overwrite it", func() {
				So(s.Append(ctx, sampleRow("X1")), ShouldNotBeNil)
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "{not json")
			})
		})

		Convey("When the directory does not exist", func() {
			bad := localstore.NewFileStore(filepath.Join(t.TempDir(), "missing", "state.json"))
			err := bad.Append(ctx, sampleRow("X1"))

			Convey("Then Append fails with ErrWriteState", func() {
				So(errors.Is(err, localstore.ErrWriteState), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded memory store", t, func() {
		m := localstore.NewMemoryStore(localstore.State{SubmittedIDs: []string{"OLD"}})

		Convey("When a row is appended", func() {
			So(m.Append(ctx, sampleRow("NEW")), ShouldBeNil)
			st, _ := m.Load(ctx)

			Convey("Then both collections grow", func() {
				So(st.SubmittedIDs, ShouldResemble, []string{"OLD", "NEW"})
				So(st.Submissions, ShouldHaveLength, 1)
			})
		})

		Convey("When appends are set to fail", func() {
			boom := errors.New("disk full")
			m.FailAppends(boom)

			Convey("Then Append reports the error and state is unchanged", func() {
				So(m.Append(ctx, sampleRow("NEW")), ShouldEqual, boom)
				st, _ := m.Load(ctx)
				So(st.SubmittedIDs, ShouldResemble, []string{"OLD"})
			})
		})
	})
}
