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

	"github.com/okian/teamsplit/internal/adapters/history"
	"github.com/okian/teamsplit/internal/adapters/http/api"
	service "github.com/okian/teamsplit/internal/app"
	"github.com/okian/teamsplit/internal/domain/roster"
	"github.com/okian/teamsplit/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	proposal   service.Proposal
	players    []service.PlayerView
	err        error
	lastReq    service.Request
	lastOnline []string
}

func (m *mockDependencies) Propose(_ context.Context, req service.Request) (service.Proposal, error) {
	m.lastReq = req
	if m.err != nil {
		return service.Proposal{}, m.err
	}
	return m.proposal, nil
}

func (m *mockDependencies) Players(_ context.Context, online []string) ([]service.PlayerView, error) {
	m.lastOnline = online
	if m.err != nil {
		return nil, m.err
	}
	return m.players, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) Stats() map[string]any {
	return m.stats
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			proposal: service.Proposal{
				ID:        "p-1",
				BestScore: 0,
				Ties:      2,
				Seed:      "202610193",
				Index:     1,
				Selected:  service.Split{Labels: "1221", Team1: []string{"Ann", "Dee"}, Team2: []string{"Bob", "Cy"}},
			},
			players: []service.PlayerView{{Name: "Ann", Rank: 3}, {Name: "Bob", Rank: 0}},
		}
		stats := &mockStatsProvider{stats: map[string]any{"proposals": 4}}
		h := api.NewServer(deps, stats).Handler()

		Convey("Health answers ok", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Metrics are exposed in the Prometheus format", func() {
			serve(h, http.MethodGet, "/healthz", "")
			w := serve(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "teamsplit_http_requests_total")
		})

		Convey("API docs are mounted", func() {
			So(serve(h, http.MethodGet, "/openapi.yaml", "").Code, ShouldEqual, http.StatusOK)
			So(serve(h, http.MethodGet, "/api-docs", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats come from the provider", func() {
			w := serve(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"proposals":4`)
		})

		Convey("Players splits the online query", func() {
			w := serve(h, http.MethodGet, "/players?online=Ann,%20Bob", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastOnline, ShouldResemble, []string{"Ann", "Bob"})

			var got []service.PlayerView
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].Name, ShouldEqual, "Ann")
		})

		Convey("Players without online is a bad request", func() {
			w := serve(h, http.MethodGet, "/players", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A proposal is created", func() {
			w := serve(h, http.MethodPost, "/proposals", `{"online":["Ann","Bob","Cy","Dee"],"game_number":"3"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.lastReq.Online, ShouldResemble, []string{"Ann", "Bob", "Cy", "Dee"})
			So(deps.lastReq.GameNumber, ShouldEqual, "3")

			var got service.Proposal
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got.ID, ShouldEqual, "p-1")
			So(got.Index, ShouldEqual, 1)
			So(got.Selected.Team1, ShouldResemble, []string{"Ann", "Dee"})
		})

		Convey("Malformed bodies are rejected", func() {
			So(serve(h, http.MethodPost, "/proposals", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodPost, "/proposals", `{"online":[]}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodPost, "/proposals", `{"players":["a"]}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Oversized bodies are refused without reaching the service", func() {
			deps.lastReq = service.Request{}
			names := `"` + strings.Repeat("x", api.MaxProposalBody) + `"`
			w := serve(h, http.MethodPost, "/proposals", `{"online":[`+names+`]}`)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(w.Body.String(), ShouldContainSubstring, "body_too_large")
			So(deps.lastReq.Online, ShouldBeNil)
		})

		Convey("Unknown routes and methods are not served", func() {
			So(serve(h, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(h, http.MethodGet, "/proposals", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_ErrorMapping(t *testing.T) {
	Convey("Given service failures", t, func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"unknown player", &roster.UnknownPlayerError{Name: "Zed"}, http.StatusNotFound, "unknown_player"},
			{"duplicate player", &roster.DuplicateNameError{Name: "Ann"}, http.StatusBadRequest, "duplicate_player"},
			{"no players", service.ErrNoPlayers, http.StatusBadRequest, "bad_request"},
			{"too many players", fmt.Errorf("%w: 30 players, at most 24", search.ErrTooManyPlayers), http.StatusBadRequest, "bad_request"},
			{"bad cell", &history.InvalidResultTokenError{Row: 3, Column: 2, Cell: "C3", Player: "Bob", Token: "X"}, http.StatusUnprocessableEntity, "bad_history"},
			{"empty history", history.ErrEmptyHistory, http.StatusUnprocessableEntity, "bad_history"},
			{"unreadable history", history.ErrRead, http.StatusInternalServerError, "internal_error"},
			{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}

		for _, tc := range cases {
			Convey("When the service fails with "+tc.name, func() {
				deps := &mockDependencies{err: tc.err}
				h := api.NewServer(deps, nil).Handler()

				w := serve(h, http.MethodPost, "/proposals", `{"online":["Ann","Bob"]}`)

				Convey("Then the status and code follow the error", func() {
					So(w.Code, ShouldEqual, tc.status)
					var body struct {
						Code    string `json:"code"`
						Message string `json:"message"`
					}
					So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
					So(body.Code, ShouldEqual, tc.code)
					So(body.Message, ShouldEqual, tc.err.Error())
				})
			})
		}
	})
}

func TestServer_RateLimit(t *testing.T) {
	Convey("Given a server allowing a burst of two proposals", t, func() {
		deps := &mockDependencies{}
		h := api.NewServer(deps, nil, api.WithRateLimit(0.001, 2)).Handler()

		Convey("When a client sends three in a row", func() {
			var codes []int
			for i := 0; i < 3; i++ {
				codes = append(codes, serve(h, http.MethodPost, "/proposals", `{"online":["Ann","Bob"]}`).Code)
			}

			Convey("Then the third is rejected", func() {
				So(codes, ShouldResemble, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests})
			})

			Convey("And reads are not limited", func() {
				So(serve(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When a client changes its forwarding headers on every request", func() {
			var codes []int
			for i := 0; i < 4; i++ {
				req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(`{"online":["Ann","Bob"]}`))
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
				req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				codes = append(codes, w.Code)
			}

			Convey("Then the requests still share one bucket", func() {
				So(codes, ShouldResemble, []int{
					http.StatusCreated, http.StatusCreated,
					http.StatusTooManyRequests, http.StatusTooManyRequests,
				})
			})
		})
	})

	Convey("Given an IP limiter", t, func() {
		limiter := api.NewIPRateLimiter(1, 1)

		Convey("Then each IP gets its own bucket", func() {
			So(limiter.GetLimiter("10.0.0.1"), ShouldEqual, limiter.GetLimiter("10.0.0.1"))
			So(limiter.GetLimiter("10.0.0.1"), ShouldNotEqual, limiter.GetLimiter("10.0.0.2"))
		})
	})
}
