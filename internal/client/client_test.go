package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/pacematch/internal/adapters/http/api"
	"github.com/okian/pacematch/internal/adapters/repository"
	"github.com/okian/pacematch/internal/adapters/source"
	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/client"
	"github.com/okian/pacematch/internal/domain/race"
	"github.com/okian/pacematch/internal/fixtures"
	"github.com/okian/pacematch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	catalog := race.NewCatalog()
	for _, id := range []string{"NY18", "NY19"} {
		r, err := catalog.Lookup(id)
		if err != nil {
			t.Fatal(err)
		}
		cfg := fixtures.DefaultConfig()
		cfg.Runners = 40
		if _, err := fixtures.Write(ctx, dir, r, cfg); err != nil {
			t.Fatal(err)
		}
	}

	svc := app.New(
		app.WithLoader(source.NewLoader(dir)),
		app.WithStore(repository.NewCSVStore(filepath.Join(dir, "master_matches.csv"))),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Close()
	})
	return srv
}

func TestClient(t *testing.T) {
	Convey("Given a running server with two New York editions", t, func() {
		srv := newServer(t)
		c := client.New(srv.URL+"/", client.WithPollInterval(10*time.Millisecond), client.WithTimeout(5*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("Then it is healthy and lists the catalog", func() {
			So(c.Health(ctx), ShouldBeNil)
			races, err := c.Races(ctx)
			So(err, ShouldBeNil)
			So(races, ShouldHaveLength, 18)
		})

		Convey("When both editions are submitted", func() {
			jobs, err := c.SubmitAll(ctx, []string{"NY18", "NY19"}, 2)

			Convey("Then both runs finish with matches", func() {
				So(err, ShouldBeNil)
				So(jobs, ShouldHaveLength, 2)
				So(jobs[0].RaceID, ShouldEqual, "NY18")
				So(jobs[1].RaceID, ShouldEqual, "NY19")
				for _, j := range jobs {
					So(j.Status, ShouldEqual, app.JobDone)
					So(j.Summary, ShouldNotBeNil)
					So(j.Summary.Matched, ShouldBeGreaterThan, 0)
				}

				Convey("And the city average covers both", func() {
					avg, err := c.Average(ctx, "NY", "", nil)
					So(err, ShouldBeNil)
					So(avg.Count, ShouldEqual, jobs[0].Summary.Matched+jobs[1].Summary.Matched)
					So(avg.AverageTime, ShouldNotBeEmpty)
				})
			})
		})

		Convey("When a race has no source files", func() {
			job, err := c.Submit(ctx, "BS14")
			So(err, ShouldBeNil)
			_, err = c.WaitJob(ctx, job.ID)
			So(errors.Is(err, client.ErrJobFailed), ShouldBeTrue)
		})

		Convey("When the race is unknown", func() {
			_, err := c.Submit(ctx, "LA19")
			So(client.IsStatus(err, http.StatusBadRequest), ShouldBeTrue)
			var apiErr *client.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Code, ShouldEqual, "unknown_race")
		})

		Convey("When the average filter matches nothing", func() {
			age := 200
			_, err := c.Average(ctx, "", "F", &age)
			So(client.IsStatus(err, http.StatusNotFound), ShouldBeTrue)
		})
	})
}
