package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/roster/internal/adapters/http/api"
	"github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/delivery"
	"github.com/okian/roster/internal/domain/form"
	"github.com/okian/roster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := NewRootCommand()

		Convey("Then every subcommand is present", func() {
			for _, name := range []string{"submit", "history", "catalog", "sheet", "loadcheck"} {
				sub, _, err := cmd.Find([]string{name})
				So(err, ShouldBeNil)
				So(sub.Name(), ShouldEqual, name)
			}
		})

		Convey("And the global flags have defaults", func() {
			So(cmd.PersistentFlags().Lookup("format").DefValue, ShouldEqual, "text")
			So(cmd.PersistentFlags().Lookup("state"), ShouldNotBeNil)
			So(cmd.PersistentFlags().Lookup("remote-url"), ShouldNotBeNil)
		})

		Convey("When an unknown format is given", func() {
			_, _, err := execute("catalog", "--format", "yaml")

			Convey("Then it is a command error", func() {
				So(err, ShouldNotBeNil)
				So(GetExitCode(err), ShouldEqual, ExitCommandError)
			})
		})
	})
}

func TestCatalogCommand(t *testing.T) {
	Convey("When listing the catalog as JSON", t, func() {
		out, _, err := execute("catalog", "--format", "json")

		Convey("Then work areas and technologies are listed", func() {
			So(err, ShouldBeNil)
			var view catalogView
			So(json.Unmarshal([]byte(out), &view), ShouldBeNil)
			So(len(view.WorkAreas), ShouldBeGreaterThan, 0)
			So(view.Technologies, ShouldContain, "Java")
		})
	})
}

func TestSubmitAndHistory(t *testing.T) {
	Convey("Given a local state file and no remote", t, func() {
		state := filepath.Join(t.TempDir(), "state.json")
		t.Setenv("ROSTER_REMOTE_URL", "")

		Convey("When a complete entry is submitted", func() {
			out, _, err := execute("submit", "--state", state,
				"--matricule", "x123", "--name", "Dana", "--work-area", "backend", "--tech", "Java")

			Convey("Then it succeeds", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, form.MsgSuccess)
			})

			Convey("And history shows the normalized row", func() {
				out, _, err := execute("history", "--state", state, "--format", "json")
				So(err, ShouldBeNil)
				var rows []model.Row
				So(json.Unmarshal([]byte(out), &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].ID, ShouldEqual, "X123")
				So(rows[0].WorkArea, ShouldEqual, "Back-end")
			})

			Convey("And a second submit in another case is a duplicate", func() {
				out, _, err := execute("submit", "--state", state,
					"--id", "X123", "--name", "Dana", "--work-area", "backend", "--tech", "Go")
				So(GetExitCode(err), ShouldEqual, ExitFailure)
				So(out, ShouldContainSubstring, form.MsgDuplicate)
			})
		})

		Convey("When no field is given", func() {
			_, _, err := execute("submit", "--state", state)

			Convey("Then nothing is submitted", func() {
				So(GetExitCode(err), ShouldEqual, ExitCommandError)
				So(err.Error(), ShouldContainSubstring, "nothing to submit")
			})
		})

		Convey("When the name is missing", func() {
			out, _, err := execute("submit", "--state", state,
				"--matricule", "a1", "--work-area", "backend", "--tech", "Go")

			Convey("Then the validation message is printed and nothing is stored", func() {
				So(GetExitCode(err), ShouldEqual, ExitCommandError)
				So(out, ShouldContainSubstring, form.MsgMissingName)

				hist, _, herr := execute("history", "--state", state, "--format", "json")
				So(herr, ShouldBeNil)
				So(strings.TrimSpace(hist), ShouldEqual, "[]")
			})
		})
	})

	Convey("Given a running append store", t, func() {
		ctx := context.Background()
		svc := app.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		r := api.NewRouter(nil)
		api.NewServer(svc, svc).Register(ctx, r)
		srv := httptest.NewServer(r)
		defer srv.Close()

		state := filepath.Join(t.TempDir(), "state.json")

		Convey("When an entry is submitted with a remote URL", func() {
			out, _, err := execute("submit", "--state", state, "--remote-url", srv.URL+"/submissions",
				"--format", "json", "--matricule", "b2", "--name", "Lee", "--work-area", "frontend", "--tech", "React")

			Convey("Then the delivery outcome is reported", func() {
				So(err, ShouldBeNil)
				var res submitResult
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Success, ShouldBeTrue)
				So(res.Delivery, ShouldNotBeNil)
				So(res.Delivery.Status, ShouldEqual, delivery.StatusAccepted)
			})

			Convey("And the sheet command reads the stored row", func() {
				out, _, err := execute("sheet", "--remote-url", srv.URL+"/submissions")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Matricule")
				So(out, ShouldContainSubstring, "B2")
			})

			Convey("And the sheet command works with the store root as remote URL", func() {
				out, _, err := execute("sheet", "--remote-url", srv.URL+"/")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "B2")
			})
		})
	})
}

func TestSheetWithoutRemote(t *testing.T) {
	Convey("When reading the sheet without a remote URL", t, func() {
		t.Setenv("ROSTER_REMOTE_URL", "")
		_, _, err := execute("sheet")

		Convey("Then it is a command error", func() {
			So(GetExitCode(err), ShouldEqual, ExitCommandError)
		})
	})
}

func TestLoadCheckCommand(t *testing.T) {
	Convey("Given a running append store", t, func() {
		ctx := context.Background()
		svc := app.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		r := api.NewRouter(nil)
		api.NewServer(svc, svc).Register(ctx, r)
		srv := httptest.NewServer(r)
		defer srv.Close()

		Convey("When the load check runs", func() {
			out, _, err := execute("loadcheck", "--url", srv.URL, "--unique", "10", "--repeats", "3", "--workers", "4")

			Convey("Then it passes", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "accepted")
			})
		})
	})
}

func TestExitCodes(t *testing.T) {
	Convey("Given wrapped exit errors", t, func() {
		So(GetExitCode(nil), ShouldEqual, ExitSuccess)
		So(GetExitCode(NewExitError(ExitCommandError, "bad")), ShouldEqual, ExitCommandError)
		So(GetExitCode(context.Canceled), ShouldEqual, ExitFailure)
	})
}
