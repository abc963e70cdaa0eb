package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pacematch/internal/adapters/http/api"
	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/config"
	"github.com/okian/pacematch/internal/domain/dataset"
	"github.com/okian/pacematch/internal/domain/race"
	"github.com/smartystreets/goconvey/convey"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateLinkAverage(t *testing.T) {
	convey.Convey("Given an empty data directory", t, func() {
		dir := t.TempDir()
		out := filepath.Join(dir, "master_matches.csv")
		base := []string{"--data-dir", dir, "--output", out}

		convey.Convey("When fixtures are generated for NY19", func() {
			stdout, _, err := runCLI(t, append([]string{"generate", "NY19", "--runners", "30", "--seed", "7"}, base...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stdout, convey.ShouldContainSubstring, "NY19")

			r, _ := race.NewCatalog().Lookup("NY19")
			_, statErr := os.Stat(filepath.Join(dir, r.OfficialFile))
			convey.So(statErr, convey.ShouldBeNil)

			convey.Convey("And the race is linked", func() {
				stdout, _, err := runCLI(t, append([]string{"link", "ny19", "--partitions", "3"}, base...)...)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout, convey.ShouldContainSubstring, "Matched")
				convey.So(stdout, convey.ShouldContainSubstring, "NY19")

				data, err := os.ReadFile(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldStartWith, "event_id,name,finish_time_seconds")

				convey.Convey("Then the average is reported", func() {
					stdout, _, err := runCLI(t, append([]string{"average", "--race", "NY"}, base...)...)
					convey.So(err, convey.ShouldBeNil)
					convey.So(stdout, convey.ShouldContainSubstring, "Runners")
					convey.So(stdout, convey.ShouldContainSubstring, "NY")
				})

				convey.Convey("Then an impossible filter reports an empty dataset", func() {
					_, _, err := runCLI(t, append([]string{"average", "--age", "500"}, base...)...)
					convey.So(errors.Is(err, dataset.ErrEmpty), convey.ShouldBeTrue)
				})

				convey.Convey("Then an invalid sex is rejected", func() {
					_, _, err := runCLI(t, append([]string{"average", "--sex", "x"}, base...)...)
					convey.So(errors.Is(err, dataset.ErrInvalidFilter), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And the race is linked into SQLite", func() {
				db := filepath.Join(dir, "matches.db")
				_, _, err := runCLI(t, "link", "NY19", "--data-dir", dir, "--store", "sqlite", "--output", db)
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(db)
				convey.So(statErr, convey.ShouldBeNil)

				stdout, _, err := runCLI(t, "average", "--data-dir", dir, "--store", "sqlite", "--output", db)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout, convey.ShouldContainSubstring, "all")
			})

			convey.Convey("And a zero tolerance with an exact threshold links nothing", func() {
				stdout, _, err := runCLI(t, append([]string{"link", "NY19", "--tolerance", "0", "--threshold", "1"}, base...)...)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout, convey.ShouldContainSubstring, "NY19")
			})
		})
	})
}

func TestLinkErrors(t *testing.T) {
	convey.Convey("Given the link command", t, func() {
		dir := t.TempDir()

		convey.Convey("Then an unknown race is rejected", func() {
			_, _, err := runCLI(t, "link", "LA19", "--data-dir", dir)
			convey.So(errors.Is(err, race.ErrUnknownRace), convey.ShouldBeTrue)
		})

		convey.Convey("Then a missing race id is a usage error", func() {
			_, _, err := runCLI(t, "link", "--data-dir", dir)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then an out of range threshold is a config error", func() {
			_, _, err := runCLI(t, "link", "NY19", "--data-dir", dir, "--threshold", "1.5")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Then an unknown store is a config error", func() {
			_, _, err := runCLI(t, "races", "--store", "mongo")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestRaces(t *testing.T) {
	convey.Convey("Given the races command", t, func() {
		stdout, _, err := runCLI(t, "races")

		convey.Convey("Then every edition is listed with its files", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(stdout, convey.ShouldContainSubstring, "BS14")
			convey.So(stdout, convey.ShouldContainSubstring, "NewYork2019official.csv")
			convey.So(stdout, convey.ShouldContainSubstring, "strava_chicago_2016.csv")
		})
	})
}

func TestRemote(t *testing.T) {
	convey.Convey("Given a server with generated NY19 data", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		_, _, err := runCLI(t, "generate", "NY19", "--runners", "30", "--data-dir", dir)
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New(ctx)
		cfg.DataDir = dir
		cfg.AccumulationPath = filepath.Join(dir, "master_matches.csv")
		svc, err := app.NewFromConfig(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer func() {
			srv.Close()
			_ = svc.Close()
		}()

		convey.Convey("When a run is submitted remotely", func() {
			stdout, _, err := runCLI(t, "remote", "submit", "NY19", "--url", srv.URL)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stdout, convey.ShouldContainSubstring, "NY19")

			convey.Convey("Then the remote average is available", func() {
				stdout, _, err := runCLI(t, "remote", "average", "--race", "NY19", "--url", srv.URL)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout, convey.ShouldContainSubstring, "Average")
			})
		})
	})
}
