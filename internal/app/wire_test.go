package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewFromConfig(t *testing.T) {
	Convey("Given a config pointing at a data directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		writeRace(t, dir, "NY19", officialNY19, communityNY19)
		cfg := config.New(ctx)
		cfg.DataDir = dir
		cfg.AccumulationPath = filepath.Join(dir, "out", "master_matches.csv")
		cfg.SQLitePath = filepath.Join(dir, "matches.db")

		Convey("When the sqlite store is selected", func() {
			cfg.Store = config.StoreSQLite
			svc, err := app.NewFromConfig(ctx, cfg)
			So(err, ShouldBeNil)
			defer func() { _ = svc.Close() }()

			Convey("Then runs are persisted to the database", func() {
				summary, err := svc.Run(ctx, "NY19")
				So(err, ShouldBeNil)
				So(summary.Matched, ShouldEqual, 2)

				ds, err := svc.Dataset(ctx)
				So(err, ShouldBeNil)
				So(ds.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the time tolerance is zero", func() {
			cfg.TimeToleranceSeconds = 0
			svc, err := app.NewFromConfig(ctx, cfg)
			So(err, ShouldBeNil)
			defer func() { _ = svc.Close() }()

			Convey("Then the engine uses it", func() {
				So(svc.Engine().TimeTolerance(), ShouldEqual, 0)
				summary, err := svc.Run(ctx, "NY19")
				So(err, ShouldBeNil)
				So(summary.Matched, ShouldEqual, 0)
			})
		})

		Convey("When the store is unknown", func() {
			cfg.Store = "mongo"
			_, err := app.NewFromConfig(ctx, cfg)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
