package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/carboncost/carboncost/internal/app"
	"github.com/carboncost/carboncost/internal/config"
	"github.com/carboncost/carboncost/pkg/logger"
	"github.com/carboncost/carboncost/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the collector application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("CARBON_ADDR", ":8080")
			_ = os.Setenv("CARBON_DB_DRIVER", "postgres")
			defer func() {
				_ = os.Unsetenv("CARBON_ADDR")
				_ = os.Unsetenv("CARBON_DB_DRIVER")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
			})
		})

		convey.Convey("When serving the full handler", func() {
			ctx := context.Background()
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			svc := app.New(app.WithDatabase("sqlite", dsn))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			h := newHandler(ctx, svc)

			get := func(path string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				return w
			}

			convey.Convey("Then the API routes respond", func() {
				convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/latest_co2_badge").Body.String(), convey.ShouldContainSubstring, "No Data")
				convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the docs routes respond", func() {
				convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And posting a record works end to end", func() {
				body := `{"repo":"r","owner":"o","run_id":"1","co2":1.6,"duration":8000,` +
					`"machine_type":"ubuntu-latest","badge":"Red","timestamp":"2025-07-01T10:00:00Z"}`
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/record", strings.NewReader(body)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(get("/latest_co2_badge").Body.String(), convey.ShouldContainSubstring, `"color":"red"`)
			})
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the registry exposes them", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasSuffix(f.GetName(), "system_goroutine_count") {
						found = true
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})
	})
}
