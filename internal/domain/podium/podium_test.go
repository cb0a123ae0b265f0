package podium_test

import (
	"errors"
	"image"
	"testing"

	"github.com/okian/podium/internal/domain/podium"
	"github.com/okian/podium/internal/domain/raster"
	"github.com/okian/podium/internal/fixture"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsPlacardAt(t *testing.T) {
	Convey("Given a four player podium screenshot", t, func() {
		img := fixture.Podium{Players: 4, Victor: "Duck"}.Raster().Region()

		Convey("Then every four player slot should hold a placard", func() {
			for _, slot := range podium.FourPlayerPlacards {
				ok, err := podium.IsPlacardAt(img, slot)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then positions off the slots should not be placards", func() {
			for _, p := range []image.Point{image.Pt(19, 143), image.Pt(250, 56), image.Pt(153, 149)} {
				ok, err := podium.IsPlacardAt(img, p)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Then a probe past the image edge should fail fast", func() {
			_, err := podium.IsPlacardAt(img, image.Pt(fixture.Width-10, 0))
			So(errors.Is(err, raster.ErrOutOfBounds), ShouldBeTrue)
		})
	})
}

func TestResolvePlayerCount(t *testing.T) {
	Convey("Given podium screenshots of each supported size", t, func() {
		for _, players := range []int{2, 3, 4} {
			img := fixture.Podium{Players: players, Victor: "Duck"}.Raster().Region()

			count, err := podium.ResolvePlayerCount(img)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, players)

			// Resolution is deterministic.
			again, err := podium.ResolvePlayerCount(img)
			So(err, ShouldBeNil)
			So(again, ShouldEqual, count)
		}
	})

	Convey("Given a screenshot with no placards", t, func() {
		img := fixture.Podium{Players: 0, Victor: "Duck"}.Raster().Region()

		_, err := podium.ResolvePlayerCount(img)

		Convey("Then the player count should be undetermined", func() {
			So(errors.Is(err, podium.ErrUndeterminedPlayerCount), ShouldBeTrue)
		})
	})

	Convey("Given a screenshot smaller than the podium layout", t, func() {
		small, err := raster.Filled(100, 100, raster.Black)
		So(err, ShouldBeNil)

		_, err = podium.ResolvePlayerCount(small.Region())

		Convey("Then it should report the out of bounds probe", func() {
			So(errors.Is(err, raster.ErrOutOfBounds), ShouldBeTrue)
		})
	})
}

func TestBannerRegion(t *testing.T) {
	Convey("Given a podium screenshot", t, func() {
		img := fixture.Podium{Players: 4, Victor: "Duck", Theme: fixture.Peach}.Raster().Region()

		banner, err := podium.BannerRegion(img)

		Convey("Then the banner should have the fixed size and origin", func() {
			So(err, ShouldBeNil)
			So(banner.Width(), ShouldEqual, podium.BannerWidth)
			So(banner.Height(), ShouldEqual, podium.BannerHeight)
			So(banner.Origin(), ShouldResemble, image.Pt(podium.BannerLeft, podium.BannerTop))

			c, err := banner.At(0, 0)
			So(err, ShouldBeNil)
			So(c, ShouldResemble, fixture.Peach.Light)
		})
	})
}
