package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/pacematch/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryGuard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new guard", t, func() {
		g := dedupe.NewInMemoryGuard()
		So(g.Size(), ShouldEqual, 0)

		Convey("When a race is acquired", func() {
			So(g.Acquire(ctx, "NY19"), ShouldBeTrue)

			Convey("Then a second acquire of the same race fails", func() {
				So(g.Acquire(ctx, "NY19"), ShouldBeFalse)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And other races are unaffected", func() {
				So(g.Acquire(ctx, "BS18"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 2)
			})

			Convey("And releasing makes it available again", func() {
				g.Release(ctx, "NY19")
				So(g.Size(), ShouldEqual, 0)
				So(g.Acquire(ctx, "NY19"), ShouldBeTrue)
			})
		})

		Convey("When releasing a key that was never acquired", func() {
			g.Release(ctx, "CH15")

			Convey("Then nothing changes", func() {
				So(g.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded guard", t, func() {
		g := dedupe.NewInMemoryGuard(dedupe.WithMaxSize(2))
		So(g.Acquire(ctx, "a"), ShouldBeTrue)
		So(g.Acquire(ctx, "b"), ShouldBeTrue)

		Convey("Then acquires beyond capacity fail", func() {
			So(g.Acquire(ctx, "c"), ShouldBeFalse)
			g.Release(ctx, "a")
			So(g.Acquire(ctx, "c"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent acquires of one key", t, func() {
		g := dedupe.NewInMemoryGuard()
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Acquire(ctx, "NY19") {
					wins.Add(1)
				}
				_ = g.Acquire(ctx, fmt.Sprintf("other-%d", i))
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(wins.Load(), ShouldEqual, 1)
			So(g.Size(), ShouldEqual, 65)
		})
	})
}
