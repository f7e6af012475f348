package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/carboncost/carboncost/internal/adapters/http/api"
	"github.com/carboncost/carboncost/internal/adapters/repository"
	service "github.com/carboncost/carboncost/internal/app"
	"github.com/carboncost/carboncost/internal/domain/emission"
	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies is an in-memory stand-in for the collector service.
type mockDependencies struct {
	records  []emission.Record
	storeErr error
	pingErr  error
}

func (m *mockDependencies) Record(_ context.Context, rec emission.Record) (uint, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if m.storeErr != nil {
		return 0, m.storeErr
	}
	m.records = append(m.records, rec)
	return uint(len(m.records)), nil
}

func (m *mockDependencies) Stats(_ context.Context) (types.Stats, error) {
	if m.storeErr != nil {
		return types.Stats{}, m.storeErr
	}
	s := types.Stats{
		BadgeCounts: map[string]int{"Green": 0, "Yellow": 0, "Red": 0},
		Emissions:   append([]emission.Record{}, m.records...),
	}
	for _, r := range m.records {
		s.TotalCO2 += r.CO2
		s.BadgeCounts[string(r.Badge)]++
	}
	if len(m.records) > 0 {
		s.AverageCO2 = s.TotalCO2 / float64(len(m.records))
	}
	return s, nil
}

func (m *mockDependencies) LatestBadge(_ context.Context) (types.Badge, error) {
	if m.storeErr != nil {
		return types.Badge{}, m.storeErr
	}
	if len(m.records) == 0 {
		return types.NoDataBadge(), nil
	}
	return types.NewBadge(m.records[len(m.records)-1].Badge), nil
}

func (m *mockDependencies) Ping(_ context.Context) error { return m.pingErr }

const validBody = `{"repo":"carbon-cost-team/api","owner":"carbon-cost-team","run_id":"42",` +
	`"co2":0.06,"duration":300,"machine_type":"ubuntu-latest","badge":"Green",` +
	`"timestamp":"2025-07-01T10:00:00Z"}`

func newMux(deps api.Dependencies) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return api.Handler(mux)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		h := newMux(&mockDependencies{})

		Convey("Then health endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And metrics endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And badge endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/latest_co2_badge", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And unknown paths should 404", func() {
			w := do(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRecordHandler_HandlePostRecord(t *testing.T) {
	Convey("Given a record handler", t, func() {
		deps := &mockDependencies{}
		h := newMux(deps)

		Convey("When posting a valid record", func() {
			w := do(h, http.MethodPost, "/record", validBody)

			Convey("Then it responds 201 with the new id", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var ack types.AckResponse
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack, ShouldResemble, types.AckResponse{Status: "success", ID: 1})
				So(len(deps.records), ShouldEqual, 1)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := do(h, http.MethodPost, "/record", `{"repo":`)

			Convey("Then it responds 400 bad_request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp types.ErrorResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "bad_request")
				So(deps.records, ShouldBeEmpty)
			})
		})

		Convey("When posting a record missing fields", func() {
			w := do(h, http.MethodPost, "/record", `{"repo":"a"}`)

			Convey("Then it responds 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing owner")
			})
		})

		Convey("When the store fails", func() {
			deps.storeErr = errors.New("disk full")
			w := do(h, http.MethodPost, "/record", validBody)

			Convey("Then it responds 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"internal"`)
			})
		})

		Convey("When using GET", func() {
			w := do(h, http.MethodGet, "/record", "")

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		deps := &mockDependencies{}
		h := newMux(deps)

		Convey("When no records exist", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then every aggregate is zero", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var s types.Stats
				So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
				So(s.TotalCO2, ShouldEqual, 0)
				So(s.AverageCO2, ShouldEqual, 0)
				So(s.BadgeCounts, ShouldResemble, map[string]int{"Green": 0, "Yellow": 0, "Red": 0})
				So(s.Emissions, ShouldBeEmpty)
			})
		})

		Convey("When the store fails", func() {
			deps.storeErr = errors.New("boom")
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then it responds 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When using POST", func() {
			w := do(h, http.MethodPost, "/stats", "{}")

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestBadgeHandler_HandleLatestBadge(t *testing.T) {
	Convey("Given a badge handler", t, func() {
		deps := &mockDependencies{}
		h := newMux(deps)

		Convey("When no records exist", func() {
			w := do(h, http.MethodGet, "/latest_co2_badge", "")

			Convey("Then the badge reports no data", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual,
					`{"schemaVersion":1,"label":"CO2","message":"No Data","color":"lightgrey"}`)
			})
		})

		Convey("When a green record was posted", func() {
			So(do(h, http.MethodPost, "/record", validBody).Code, ShouldEqual, http.StatusCreated)
			w := do(h, http.MethodGet, "/latest_co2_badge", "")

			Convey("Then the badge is bright green", func() {
				var b types.Badge
				So(json.Unmarshal(w.Body.Bytes(), &b), ShouldBeNil)
				So(b.Message, ShouldEqual, "Green")
				So(b.Color, ShouldEqual, "brightgreen")
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a store that cannot be reached", t, func() {
		h := newMux(&mockDependencies{pingErr: errors.New("connection refused")})

		Convey("When checking health", func() {
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then it reports degraded", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

func TestLogError_RequestID(t *testing.T) {
	Convey("Given JSON logs captured in a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithOptions(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)), ShouldBeNil)
		defer func() { _ = logger.Init() }()

		Convey("When a store failure is served for a tagged request", func() {
			h := newMux(&mockDependencies{storeErr: errors.New("disk full")})
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the error line carries the request id", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(buf.String(), ShouldContainSubstring, `"request_id":"req-42"`)
				So(buf.String(), ShouldContainSubstring, "disk full")
			})
		})

		Convey("When the health check fails", func() {
			h := newMux(&mockDependencies{pingErr: errors.New("connection refused")})
			do(h, http.MethodGet, "/healthz", "")

			Convey("Then the failure is logged under the health op", func() {
				So(buf.String(), ShouldContainSubstring, "api.health: connection refused")
			})
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the wrapped handler", t, func() {
		h := newMux(&mockDependencies{})

		Convey("When sending a preflight request", func() {
			w := do(h, http.MethodOptions, "/record", "")

			Convey("Then it responds 204 with CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})

		Convey("When sending a normal request", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then CORS and request id headers are set", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestCollectorRoundTrip(t *testing.T) {
	Convey("Given the API backed by a real service and SQLite store", t, func() {
		ctx := context.Background()
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		svc := service.New(service.WithDatabase(repository.DriverSQLite, dsn))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		h := newMux(svc)

		Convey("When a record is posted and stats are read back", func() {
			So(do(h, http.MethodPost, "/record", validBody).Code, ShouldEqual, http.StatusCreated)
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then the record comes back verbatim", func() {
				var s types.Stats
				So(json.Unmarshal(w.Body.Bytes(), &s), ShouldBeNil)
				So(len(s.Emissions), ShouldEqual, 1)
				So(s.Emissions[0], ShouldResemble, emission.Record{
					Repo: "carbon-cost-team/api", Owner: "carbon-cost-team", RunID: "42",
					CO2: 0.06, Duration: 300, MachineType: "ubuntu-latest",
					Badge: emission.Green, Timestamp: "2025-07-01T10:00:00Z",
				})
				So(s.TotalCO2, ShouldAlmostEqual, 0.06, 1e-9)
				So(s.BadgeCounts["Green"], ShouldEqual, 1)
			})

			Convey("And the badge reflects it", func() {
				w := do(h, http.MethodGet, "/latest_co2_badge", "")
				So(w.Body.String(), ShouldContainSubstring, `"message":"Green"`)
			})
		})

		Convey("When a record claims a tier its co2 does not have", func() {
			body := strings.Replace(validBody, `"co2":0.06`, `"co2":2.0`, 1)
			w := do(h, http.MethodPost, "/record", body)

			Convey("Then it is rejected and nothing is stored", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "does not match")
				badge := do(h, http.MethodGet, "/latest_co2_badge", "")
				So(badge.Body.String(), ShouldContainSubstring, `"message":"No Data"`)
			})
		})
	})
}
