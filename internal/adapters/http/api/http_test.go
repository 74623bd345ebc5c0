package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/brc/internal/adapters/http/api"
	"github.com/okian/brc/pkg/logger"
	"github.com/okian/brc/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(provider api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(provider).Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		provider := &mockStatsProvider{stats: map[string]interface{}{"running": true, "runId": "abc"}}
		mux := newMux(provider)

		Convey("When requesting /healthz", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When requesting /stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the provider's stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["running"], ShouldEqual, true)
				So(body["runId"], ShouldEqual, "abc")
			})
		})

		Convey("When requesting /metrics after a recorded chunk", func() {
			metrics.RecordChunk(128, 4, time.Millisecond)
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should expose the engine registry", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "brc_engine_chunks_processed_total")
			})
		})
	})
}

func TestHandlers_MethodChecks(t *testing.T) {
	Convey("Given the monitoring handlers", t, func() {
		mux := newMux(&mockStatsProvider{})

		for _, path := range []string{"/healthz", "/stats"} {
			Convey(fmt.Sprintf("When POSTing to %s", path), func() {
				req := httptest.NewRequest(http.MethodPost, path, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				Convey("Then it should be rejected", func() {
					So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
					So(w.Body.String(), ShouldContainSubstring, "method_not_allowed")
				})
			})
		}
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		handler := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("When it is called", func() {
			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

			Convey("Then the response should pass through unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(w.Body.String(), ShouldEqual, "short and stout")
			})
		})
	})
}

func TestServer_StartShutdown(t *testing.T) {
	Convey("Given a server listening on an ephemeral port", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		server := api.NewServer(&mockStatsProvider{stats: map[string]interface{}{"running": false}})
		addr, err := server.Start(ctx, "127.0.0.1:0")
		So(err, ShouldBeNil)
		defer func() { _ = server.Shutdown(ctx) }()

		Convey("When requesting /healthz over the network", func() {
			resp, err := http.Get("http://" + addr.String() + "/healthz")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should answer", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When starting it a second time", func() {
			_, err := server.Start(ctx, "127.0.0.1:0")
			So(err, ShouldNotBeNil)
		})

		Convey("When shutting it down twice", func() {
			So(server.Shutdown(ctx), ShouldBeNil)
			So(server.Shutdown(ctx), ShouldBeNil)
		})
	})
}
