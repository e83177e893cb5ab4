package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var sched *scheduler.Scheduler

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		sched = scheduler.New(logger)
	})

	AfterEach(func() {
		<-sched.Stop().Done()
	})

	Describe("job registration", func() {
		It("rejects malformed schedules", func() {
			err := sched.AddJob("broken", "not a schedule", func(ctx context.Context) error { return nil })
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("broken"))
		})

		It("lists registered jobs", func() {
			Expect(sched.AddJob("collect", "@every 1h", func(ctx context.Context) error { return nil })).To(Succeed())
			Expect(sched.AddJob("purge", "@daily", func(ctx context.Context) error { return nil })).To(Succeed())

			infos := sched.ListJobs()
			names := make([]string, len(infos))
			for i, info := range infos {
				names[i] = info.Name
			}
			Expect(names).To(ConsistOf("collect", "purge"))
		})

		It("removes jobs by name", func() {
			Expect(sched.AddJob("collect", "@every 1h", func(ctx context.Context) error { return nil })).To(Succeed())
			sched.RemoveJob("collect")
			Expect(sched.ListJobs()).To(BeEmpty())
		})
	})

	Describe("running jobs", func() {
		It("fires a registered job on its schedule", func() {
			var runs int32
			Expect(sched.AddJob("tick", "@every 50ms", func(ctx context.Context) error {
				atomic.AddInt32(&runs, 1)
				return nil
			})).To(Succeed())

			sched.Start()
			Eventually(func() int32 {
				return atomic.LoadInt32(&runs)
			}, "3s", "10ms").Should(BeNumerically(">=", 2))
		})

		It("keeps scheduling after a job returns an error", func() {
			var runs int32
			Expect(sched.AddJob("flaky", "@every 50ms", func(ctx context.Context) error {
				atomic.AddInt32(&runs, 1)
				return errors.New("transient failure")
			})).To(Succeed())

			sched.Start()
			Eventually(func() int32 {
				return atomic.LoadInt32(&runs)
			}, "3s", "10ms").Should(BeNumerically(">=", 2))
		})

		It("skips ticks while the previous run is still going", func() {
			var inFlight, maxInFlight int32
			Expect(sched.AddJob("slow", "@every 50ms", func(ctx context.Context) error {
				current := atomic.AddInt32(&inFlight, 1)
				defer atomic.AddInt32(&inFlight, -1)
				for {
					seen := atomic.LoadInt32(&maxInFlight)
					if current <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, current) {
						break
					}
				}
				time.Sleep(200 * time.Millisecond)
				return nil
			})).To(Succeed())

			sched.Start()
			time.Sleep(500 * time.Millisecond)
			Expect(atomic.LoadInt32(&maxInFlight)).To(Equal(int32(1)), "a job must never overlap itself")
		})
	})
})
