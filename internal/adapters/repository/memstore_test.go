package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/banner"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
	. "github.com/smartystreets/goconvey/convey"
)

func win(victor string, players, minute int) model.Analysis {
	at := time.Date(2017, 2, 10, 16, minute, 0, 0, time.UTC)
	return model.Analysis{
		Screenshot:  model.Screenshot{ID: fmt.Sprintf("02-10-17 16;%02d", minute), TakenAt: at},
		PlayerCount: players,
		Victor:      victor,
	}
}

func TestMemoryStore_Leaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with recorded rounds", t, func() {
		s := NewMemoryStore()
		for _, a := range []model.Analysis{
			win("Peach", 4, 3),
			win("Mario", 4, 1),
			win("Peach", 2, 2),
			win("Luigi", 3, 5),
			win("Mario", 3, 4),
			win("", 3, 6),
			win("Toad", 2, 7),
		} {
			So(s.Record(ctx, a), ShouldBeNil)
		}

		Convey("When reading the top entries", func() {
			top, err := s.TopN(ctx, 10)

			Convey("Then they should be ordered by wins, then name, with tied ranks", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 4)
				So(top[0].Player, ShouldEqual, "Mario")
				So(top[1].Player, ShouldEqual, "Peach")
				So(top[2].Player, ShouldEqual, "Luigi")
				So(top[3].Player, ShouldEqual, "Toad")
				So([]int{top[0].Rank, top[1].Rank, top[2].Rank, top[3].Rank}, ShouldResemble, []int{1, 1, 2, 2})
				So(top[0].Wins, ShouldEqual, 2)
				So(top[0].LastWin.Minute(), ShouldEqual, 4)
			})
		})

		Convey("When limiting the top entries", func() {
			top, err := s.TopN(ctx, 1)

			Convey("Then only the leader should be returned", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 1)
				So(top[0].Player, ShouldEqual, "Mario")
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := s.TopN(ctx, 0)

			Convey("Then ErrInvalidLimit should be returned", func() {
				So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When ranking a single player", func() {
			e, err := s.Rank(ctx, "Luigi")
			_, missing := s.Rank(ctx, "Wario")

			Convey("Then the row should match the leaderboard", func() {
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 2)
				So(e.Wins, ShouldEqual, 1)
				So(errors.Is(missing, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a later round changes the order", func() {
			_, _ = s.TopN(ctx, 10)
			So(s.Record(ctx, win("Toad", 4, 8)), ShouldBeNil)
			So(s.Record(ctx, win("Toad", 4, 9)), ShouldBeNil)
			top, _ := s.TopN(ctx, 1)

			Convey("Then the snapshot should be rebuilt", func() {
				So(top[0].Player, ShouldEqual, "Toad")
				So(top[0].Wins, ShouldEqual, 3)
			})
		})

		Convey("Then tallies and histograms should cover every round", func() {
			So(s.Wins(ctx, "Peach"), ShouldEqual, 2)
			So(s.Wins(ctx, "nobody"), ShouldEqual, 0)
			So(s.Count(ctx), ShouldEqual, 4)
			So(s.PlayerCounts(ctx), ShouldResemble, map[int]int{2: 2, 3: 3, 4: 2})
		})

		Convey("Then analyses should be returned in capture order", func() {
			all := s.Analyses(ctx)
			So(all, ShouldHaveLength, 7)
			for i := 1; i < len(all); i++ {
				So(all[i].Screenshot.TakenAt.After(all[i-1].Screenshot.TakenAt), ShouldBeTrue)
			}
		})
	})
}

func TestMemoryStore_FailuresAndDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.RecordFailure(ctx, &model.Failure{Screenshot: model.Screenshot{ID: "b"}, Stage: model.StageDecode, Err: errors.New("x")})
	_ = s.RecordFailure(ctx, &model.Failure{Screenshot: model.Screenshot{ID: "a"}, Stage: model.StagePlayerCount, Err: podium.ErrUndeterminedPlayerCount})
	_ = s.RecordDuplicate(ctx, model.Screenshot{ID: "c"})

	failures := s.Failures(ctx)
	if len(failures) != 2 || failures[0].Screenshot.ID != "a" {
		t.Errorf("expected failures ordered by ID, got %v", failures)
	}
	if d := s.Duplicates(ctx); d != 1 {
		t.Errorf("expected 1 duplicate, got %d", d)
	}
}

func TestMemoryStore_Fingerprints(t *testing.T) {
	ctx := context.Background()
	var fp banner.Fingerprint
	if err := fp.UnmarshalText([]byte("2x1:#.")); err != nil {
		t.Fatal(err)
	}
	a := win("Mario", 4, 1)
	a.Fingerprint = fp

	dropping := NewMemoryStore()
	_ = dropping.Record(ctx, a)
	if got := dropping.Analyses(ctx)[0].Fingerprint.Width(); got != 0 {
		t.Errorf("expected fingerprint to be dropped, width %d", got)
	}

	keeping := NewMemoryStore(WithKeepFingerprints(true))
	_ = keeping.Record(ctx, a)
	if got := keeping.Analyses(ctx)[0].Fingerprint.Width(); got != 2 {
		t.Errorf("expected fingerprint to be kept, width %d", got)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.Record(ctx, win(fmt.Sprintf("p%d", g%4), 4, i%60))
				_, _ = s.TopN(ctx, 3)
			}
		}(g)
	}
	wg.Wait()

	top, err := s.TopN(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range top {
		if e.Wins != 100 {
			t.Errorf("expected 100 wins for %s, got %d", e.Player, e.Wins)
		}
	}
}
