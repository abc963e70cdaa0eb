package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/pacematch/internal/adapters/mq/queue"
	"github.com/okian/pacematch/internal/adapters/mq/worker"
	"github.com/okian/pacematch/internal/domain/model"
	logging "github.com/okian/pacematch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
	done chan struct{}
}

func newRecordingHandler(expected int) *recordingHandler {
	return &recordingHandler{fail: map[string]bool{}, done: make(chan struct{}, expected)}
}

func (h *recordingHandler) Handle(_ context.Context, r model.RunRequest) error {
	h.mu.Lock()
	h.seen = append(h.seen, r.ID)
	fail := h.fail[r.ID]
	h.mu.Unlock()
	h.done <- struct{}{}
	if fail {
		return errors.New("boom")
	}
	return nil
}

func (h *recordingHandler) wait(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d requests", i, n)
		}
	}
}

func TestPool(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a pool reading a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		h := newRecordingHandler(8)
		h.fail["r2"] = true
		p := worker.NewPool(3, q, h, worker.WithName("test"))
		p.Start(ctx)
		p.Start(ctx)

		convey.Convey("When requests are enqueued", func() {
			for _, id := range []string{"r1", "r2", "r3", "r4"} {
				convey.So(q.Enqueue(ctx, model.RunRequest{ID: id, RaceID: "NY19"}), convey.ShouldBeNil)
			}
			h.wait(t, 4)

			convey.Convey("Then every request is handled once", func() {
				h.mu.Lock()
				defer h.mu.Unlock()
				convey.So(h.seen, convey.ShouldHaveLength, 4)
				convey.So(h.seen, convey.ShouldContain, "r3")
			})

			convey.Convey("And failures are counted", func() {
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(p.Failed(), convey.ShouldEqual, 1)
				convey.So(p.Processed(), convey.ShouldEqual, 3)
				convey.So(p.Active(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the pool is shut down twice", func() {
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(p.Size(), convey.ShouldEqual, 3)
		})
	})

	convey.Convey("Given a pool whose handler blocks", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		release := make(chan struct{})
		started := make(chan struct{})
		p := worker.NewPool(1, q, worker.HandlerFunc(func(ctx context.Context, _ model.RunRequest) error {
			close(started)
			<-release
			return nil
		}))
		p.Start(context.Background())
		convey.So(q.Enqueue(context.Background(), model.RunRequest{ID: "slow"}), convey.ShouldBeNil)
		<-started

		convey.Convey("Then shutdown honours the deadline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := p.Shutdown(ctx)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			close(release)
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		p := worker.NewPool(0, queue.NewInMemoryQueue(), worker.HandlerFunc(func(context.Context, model.RunRequest) error { return nil }))
		convey.So(p.Size(), convey.ShouldEqual, 2)
	})
}
