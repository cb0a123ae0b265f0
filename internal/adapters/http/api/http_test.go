package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/banner"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/raster"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockLeaderboard struct {
	topN    []api.Entry
	rank    api.Entry
	rankErr error
	topNErr error
	limits  []int
}

func (m *mockLeaderboard) TopN(_ context.Context, n int) ([]api.Entry, error) {
	m.limits = append(m.limits, n)
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

func (m *mockLeaderboard) Rank(_ context.Context, player string) (api.Entry, error) {
	if m.rankErr != nil {
		return api.Entry{}, m.rankErr
	}
	if m.rank.Player != player {
		return api.Entry{}, repository.ErrNotFound
	}
	return m.rank, nil
}

type mockDependencies struct {
	*mockLeaderboard
	analyses    []model.Analysis
	analysesErr error
	report      *service.Report
}

func (m *mockDependencies) Analyses(_ context.Context) ([]model.Analysis, error) {
	return m.analyses, m.analysesErr
}

func (m *mockDependencies) LastReport() (service.Report, bool) {
	if m.report == nil {
		return service.Report{}, false
	}
	return *m.report, true
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code, body.Message
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{mockLeaderboard: &mockLeaderboard{}}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{"runs": 1}}
		server := api.NewServer(deps, statsProvider, 100)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			for _, path := range []string{"/healthz", "/stats", "/leaderboard", "/analyses"} {
				Convey("Then "+path+" should be accessible", func() {
					req := httptest.NewRequest("GET", path, nil)
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, req)
					So(w.Code, ShouldEqual, http.StatusOK)
				})
			}

			Convey("And the report should be missing before the first pass", func() {
				req := httptest.NewRequest("GET", "/report", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
				code, _ := decodeError(t, w)
				So(code, ShouldEqual, "no_report")
			})

			Convey("And unknown players should be not found", func() {
				req := httptest.NewRequest("GET", "/rank/Bowser", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given an error raised by a handler", t, func() {
		cause := fmt.Errorf("store: %w", repository.ErrInvalidLimit)
		err := api.WrapKind("api.get_leaderboard", api.ErrBadRequest, cause)

		Convey("Then it should match both its kind and its cause", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.get_leaderboard: bad request: store: invalid leaderboard limit")
		})

		Convey("Then kinds and wraps alone should render compactly", func() {
			So(api.NewKind("api.get_rank", api.ErrBadRequest).Error(), ShouldEqual, "api.get_rank: bad request")
			So(api.Wrap("api.get_rank", repository.ErrNotFound).Error(), ShouldEqual, "api.get_rank: player not found")
		})
	})
}

func TestLeaderboardHandler_HandleGetLeaderboard(t *testing.T) {
	Convey("Given a leaderboard handler", t, func() {
		mockLB := &mockLeaderboard{
			topN: []api.Entry{
				{Rank: 1, Player: "Mario", Wins: 12},
				{Rank: 2, Player: "Peach", Wins: 9},
				{Rank: 2, Player: "Toad", Wins: 9},
			},
		}
		handler := api.NewLeaderboardHandler(mockLB, 10)

		Convey("When requesting top N entries", func() {
			req := httptest.NewRequest("GET", "/leaderboard?limit=2", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return the top N entries", func() {
				handler.HandleGetLeaderboard(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response []api.Entry
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(len(response), ShouldEqual, 2)
				So(response[0].Player, ShouldEqual, "Mario")
				So(response[1].Player, ShouldEqual, "Peach")
				So(response[1].Wins, ShouldEqual, 9)
			})
		})

		Convey("When no limit is specified", func() {
			req := httptest.NewRequest("GET", "/leaderboard", nil)
			w := httptest.NewRecorder()

			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should ask for the maximum limit", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(mockLB.limits, ShouldResemble, []int{10})
			})
		})

		Convey("When the limit is not a positive number", func() {
			for _, limit := range []string{"0", "-3", "ten"} {
				req := httptest.NewRequest("GET", "/leaderboard?limit="+limit, nil)
				w := httptest.NewRecorder()
				handler.HandleGetLeaderboard(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}

			Convey("Then the store should not be queried", func() {
				So(mockLB.limits, ShouldBeEmpty)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/leaderboard?limit=11", nil)
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should return limit_exceeded", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				code, _ := decodeError(t, w)
				So(code, ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When the service has not started", func() {
			mockLB.topNErr = service.ErrNotStarted
			req := httptest.NewRequest("GET", "/leaderboard?limit=1", nil)
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When leaderboard returns an error", func() {
			mockLB.topNErr = fmt.Errorf("database error")
			req := httptest.NewRequest("GET", "/leaderboard?limit=10", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return internal server error", func() {
				handler.HandleGetLeaderboard(w, req)
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When posting to the leaderboard", func() {
			req := httptest.NewRequest("POST", "/leaderboard?limit=1", nil)
			w := httptest.NewRecorder()
			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRankHandler_HandleGetRank(t *testing.T) {
	Convey("Given a rank handler", t, func() {
		mockLB := &mockLeaderboard{
			rank: api.Entry{Rank: 3, Player: "Wario Bros", Wins: 4},
		}
		handler := api.NewRankHandler(mockLB)

		Convey("When requesting rank for an existing player", func() {
			req := httptest.NewRequest("GET", "/rank/Wario%20Bros", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return the rank information", func() {
				handler.HandleGetRank(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var response api.Entry
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response.Player, ShouldEqual, "Wario Bros")
				So(response.Rank, ShouldEqual, 3)
				So(response.Wins, ShouldEqual, 4)
			})
		})

		Convey("When requesting rank for a player who never won", func() {
			req := httptest.NewRequest("GET", "/rank/Bowser", nil)
			w := httptest.NewRecorder()

			handler.HandleGetRank(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				code, message := decodeError(t, w)
				So(code, ShouldEqual, "not_found")
				So(message, ShouldContainSubstring, "player not found")
			})
		})

		Convey("When the player name is missing or nested", func() {
			for _, path := range []string{"/rank/", "/rank/a/b"} {
				req := httptest.NewRequest("GET", path, nil)
				w := httptest.NewRecorder()
				handler.HandleGetRank(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When leaderboard returns other error", func() {
			req := httptest.NewRequest("GET", "/rank/Wario%20Bros", nil)
			w := httptest.NewRecorder()

			// Mock the error response
			mockLB.rankErr = fmt.Errorf("database error")

			handler.HandleGetRank(w, req)

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestAnalysesHandler_HandleGetAnalyses(t *testing.T) {
	Convey("Given stored analyses", t, func() {
		at := time.Date(2016, 12, 15, 18, 50, 0, 0, time.UTC)
		palette := banner.Palette{Light: raster.Color{R: 232, G: 232, B: 232}, Dark: raster.Black}
		deps := &mockDependencies{
			mockLeaderboard: &mockLeaderboard{},
			analyses: []model.Analysis{
				{Screenshot: model.Screenshot{ID: "12-15-16 18;50", TakenAt: at}, PlayerCount: 4, Victor: "Mario", Palette: palette, Coverage: 0.93},
				{Screenshot: model.Screenshot{ID: "12-15-16 19;02", TakenAt: at.Add(12 * time.Minute)}, PlayerCount: 2, Palette: palette},
			},
		}
		handler := api.NewAnalysesHandler(deps)

		Convey("When listing every analysis", func() {
			req := httptest.NewRequest("GET", "/analyses", nil)
			w := httptest.NewRecorder()
			handler.HandleGetAnalyses(w, req)

			Convey("Then it should return them with hex palettes", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var response []map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response, ShouldHaveLength, 2)
				So(response[0]["id"], ShouldEqual, "12-15-16 18;50")
				So(response[0]["victor"], ShouldEqual, "Mario")
				So(response[0]["light"], ShouldEqual, "#e8e8e8")
				So(response[0]["dark"], ShouldEqual, "#000000")
				So(response[0]["player_count"], ShouldEqual, 4)
				So(response[1], ShouldNotContainKey, "victor")
			})
		})

		Convey("When filtering by victor", func() {
			req := httptest.NewRequest("GET", "/analyses?victor=", nil)
			w := httptest.NewRecorder()
			handler.HandleGetAnalyses(w, req)

			Convey("Then an empty victor should select the unidentified rounds", func() {
				var response []map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response, ShouldHaveLength, 1)
				So(response[0]["id"], ShouldEqual, "12-15-16 19;02")
			})
		})

		Convey("When the service has not started", func() {
			deps.analysesErr = service.ErrNotStarted
			req := httptest.NewRequest("GET", "/analyses", nil)
			w := httptest.NewRecorder()
			handler.HandleGetAnalyses(w, req)

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestReportHandler_HandleGetReport(t *testing.T) {
	Convey("Given a finished album pass", t, func() {
		deps := &mockDependencies{
			mockLeaderboard: &mockLeaderboard{},
			report: &service.Report{
				AlbumDir:    "album",
				Screenshots: 5,
				Duration:    service.Duration(2 * time.Second),
				Leaderboard: []api.Entry{{Rank: 1, Player: "Mario", Wins: 3}},
			},
		}
		handler := api.NewReportHandler(deps)

		Convey("When requesting the report", func() {
			req := httptest.NewRequest("GET", "/report", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should be returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `"duration":"2s"`)
				So(body, ShouldContainSubstring, `"player":"Mario"`)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should expose the podium metrics", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(w.Body.String(), "podium_"), ShouldBeTrue)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"analysed":     120,
				"knownPlayers": 4,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["analysed"], ShouldEqual, 120)
				So(response["knownPlayers"], ShouldEqual, 4)
			})
		})
	})
}

func TestStatsHandler_NoProvider(t *testing.T) {
	Convey("Given a stats handler without provider", t, func() {
		handler := api.NewStatsHandler(nil)

		Convey("When handling stats request", func() {
			w := httptest.NewRecorder()
			handler.HandleStats(w, httptest.NewRequest("GET", "/stats", nil))

			Convey("Then it should report the service as unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "service not started")
			})
		})
	})
}
