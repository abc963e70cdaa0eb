package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		Convey("Then it starts empty", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.Capacity(), ShouldEqual, 2)
		})

		Convey("When requests are enqueued", func() {
			So(q.Enqueue(ctx, Request{ID: "a", RaceID: "NY19"}), ShouldBeNil)
			So(q.Enqueue(ctx, Request{ID: "b", RaceID: "CH18"}), ShouldBeNil)

			Convey("Then a third is refused with ErrFull", func() {
				err := q.Enqueue(ctx, Request{ID: "c", RaceID: "BS17"})
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("And they are dequeued in order", func() {
				first := <-q.Dequeue()
				q.Ack()
				So(first.ID, ShouldEqual, "a")
				So(q.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue fails", func() {
				So(errors.Is(q.Enqueue(cctx, Request{ID: "a"}), context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, Request{ID: "a"}), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails with ErrClosed", func() {
				So(errors.Is(q.Enqueue(ctx, Request{ID: "b"}), ErrClosed), ShouldBeTrue)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("And queued requests drain before the channel closes", func() {
				r, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(r.ID, ShouldEqual, "a")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryQueueConcurrentProducers(t *testing.T) {
	Convey("Given concurrent producers on a large queue", t, func() {
		q := NewInMemoryQueue(WithCapacity(1000))
		ctx := context.Background()

		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = q.Enqueue(ctx, Request{ID: fmt.Sprintf("%d-%d", p, i)})
				}
			}(p)
		}
		wg.Wait()

		Convey("Then every request is queued", func() {
			So(q.Len(), ShouldEqual, 500)
		})
	})
}
