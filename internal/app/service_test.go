package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/fixture"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with a missing reference", t, func() {
		svc := service.New(
			service.WithAlbumDir(t.TempDir()),
			service.WithKnownPlayers(map[string]string{"Mario": filepath.Join(t.TempDir(), "mario.png")}),
		)

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should reject the reference", func() {
				So(errors.Is(err, service.ErrReference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Mario")
			})
		})
	})

	Convey("Given a service with a valid reference", t, func() {
		ref := filepath.Join(t.TempDir(), "mario.png")
		So(fixture.WritePNG(ref, fixture.Podium{Victor: "Mario"}.Image()), ShouldBeNil)
		svc := service.New(
			service.WithAlbumDir(t.TempDir()),
			service.WithKnownPlayers(map[string]string{"Mario": ref}),
		)
		defer svc.Stop()

		Convey("When starting the service twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["knownPlayers"], ShouldEqual, 1)
				So(stats["runs"], ShouldEqual, 0)
			})

			Convey("And reads should answer with an empty leaderboard", func() {
				entries, err := svc.TopN(context.Background(), 5)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestService_RunRequiresStart(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithAlbumDir(t.TempDir()))

		Convey("Then runs and reads should fail", func() {
			_, err := svc.Run(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.TopN(context.Background(), 1)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, ok := svc.LastReport()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithAlbumDir(t.TempDir()))
		So(svc.Start(context.Background()), ShouldBeNil)
		svc.Stop()

		Convey("Then it should refuse to run", func() {
			_, err := svc.Run(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_RunMissingAlbum(t *testing.T) {
	svc := service.New(service.WithAlbumDir(filepath.Join(t.TempDir(), "missing")))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop()

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a missing album")
	}
}

func TestWriteReport(t *testing.T) {
	Convey("Given a report", t, func() {
		r := service.Report{
			AlbumDir:    "album",
			StartedAt:   time.Date(2016, 12, 15, 18, 50, 0, 0, time.UTC),
			Duration:    service.Duration(1500 * time.Millisecond),
			Screenshots: 3,
			Players:     map[int]int{4: 2, 2: 1},
		}

		Convey("When writing it as JSON", func() {
			var buf bytes.Buffer
			So(service.WriteReport(&buf, r), ShouldBeNil)

			var got map[string]any
			So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)

			Convey("Then durations should be human readable", func() {
				So(got["duration"], ShouldEqual, "1.5s")
				So(got["screenshots"], ShouldEqual, 3.0)
				So(got["players"], ShouldResemble, map[string]any{"2": 1.0, "4": 2.0})
			})

			Convey("And the duration should read back", func() {
				var back struct {
					Duration service.Duration `json:"duration"`
				}
				So(json.Unmarshal(buf.Bytes(), &back), ShouldBeNil)
				So(time.Duration(back.Duration), ShouldEqual, 1500*time.Millisecond)
			})
		})
	})
}
