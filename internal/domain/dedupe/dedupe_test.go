package dedupe_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	dedupe "github.com/okian/podium/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "shot-1")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "shot-1")
				seen := d.SeenAndRecord(ctx, "shot-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is empty", func() {
				first := d.SeenAndRecord(ctx, "")
				second := d.SeenAndRecord(ctx, "")

				Convey("Then it should be tracked like any other key", func() {
					So(first, ShouldBeFalse)
					So(second, ShouldBeTrue)
				})
			})
		})

		Convey("When unrecording keys", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "shot-1")

			Convey("And the key exists", func() {
				d.Unrecord(ctx, "shot-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeFalse)
				})
			})

			Convey("And the key doesn't exist", func() {
				d.Unrecord(ctx, "missing")

				Convey("Then it should not affect the size", func() {
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When using bounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 3; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("shot-%d", i))
			}

			Convey("And the deduper is at capacity", func() {
				d.SeenAndRecord(ctx, "shot-4")

				Convey("Then it should evict the oldest key", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "shot-4"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "shot-3"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "shot-2"), ShouldBeTrue)
				})

				Convey("And the evicted key should be new again", func() {
					So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeFalse)
				})
			})

			Convey("And a key was unrecorded before eviction", func() {
				d.Unrecord(ctx, "shot-2")
				d.SeenAndRecord(ctx, "shot-4")

				Convey("Then the remaining keys should still be known", func() {
					So(d.Size(), ShouldEqual, 2)
					So(d.SeenAndRecord(ctx, "shot-3"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "shot-4"), ShouldBeTrue)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 500; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("shot-%d", i))
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, 500)
				So(d.SeenAndRecord(ctx, "shot-0"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))

		Convey("When many goroutines record the same keys", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("shot-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key should be new exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}

func checker(w, h, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestKey(t *testing.T) {
	Convey("Given two screenshots", t, func() {
		at := time.Date(2016, 12, 15, 18, 50, 0, 0, time.UTC)

		Convey("When they are pixel-identical and share a capture time", func() {
			a, errA := dedupe.Key(at, checker(64, 64, 8))
			b, errB := dedupe.Key(at, checker(64, 64, 8))

			Convey("Then their keys should be equal", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldEqual, b)
				So(a, ShouldStartWith, "2016-12-15T18:50:00Z/")
			})
		})

		Convey("When they differ only in capture time", func() {
			a, _ := dedupe.Key(at, checker(64, 64, 8))
			b, _ := dedupe.Key(at.Add(time.Minute), checker(64, 64, 8))

			Convey("Then their keys should differ", func() {
				So(a, ShouldNotEqual, b)
			})
		})

		Convey("When their pixels differ", func() {
			a, _ := dedupe.Key(at, checker(64, 64, 8))
			b, _ := dedupe.Key(at, checker(64, 64, 16))

			Convey("Then their keys should differ", func() {
				So(a, ShouldNotEqual, b)
			})
		})
	})
}
