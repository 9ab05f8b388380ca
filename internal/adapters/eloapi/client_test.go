package eloapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/elocompare/internal/adapters/eloapi"
	. "github.com/smartystreets/goconvey/convey"
)

func newRatingServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fighters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"A"},{"id":"2","name":"B"},{"id":"","name":"ghost"}]`))
	})
	mux.HandleFunc("/api/elo_history/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/api/elo_history/") {
		case "1":
			_, _ = w.Write([]byte(`{"fighter_name":"A","labels":["2020","2021-06-01"],"data":[1500,1600]}`))
		case "2":
			_, _ = w.Write([]byte(`{"fighter_name":"B","labels":[],"data":[]}`))
		case "3":
			_, _ = w.Write([]byte(`{"fighter_name":"C","labels":["2020"],"data":[1500,1510]}`))
		case "4":
			_, _ = w.Write([]byte(`{"fighter_name":"D","labels":["yesterday"],"data":[1500]}`))
		case "5":
			_, _ = w.Write([]byte(`not json`))
		case "6":
			_, _ = w.Write([]byte(`{"fighter_name":"F","labels":[2019, 1577836800000],"data":[1400,1450]}`))
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<html>oops</html>`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Fighter not found"}`))
		}
	})
	return httptest.NewServer(mux)
}

func TestClient_Entities(t *testing.T) {
	Convey("Given a rating server", t, func() {
		srv := newRatingServer()
		defer srv.Close()
		ctx := context.Background()

		Convey("When fetching the roster", func() {
			c := eloapi.NewClient(srv.URL+"/api/fighters", srv.URL+"/api/elo_history")
			entities, err := c.Entities(ctx)

			Convey("Then numeric and string ids decode and blank ids are dropped", func() {
				So(err, ShouldBeNil)
				So(len(entities), ShouldEqual, 2)
				So(entities[0].ID, ShouldEqual, "1")
				So(entities[0].Name, ShouldEqual, "A")
				So(entities[1].ID, ShouldEqual, "2")
			})
		})

		Convey("When the roster endpoint is unreachable", func() {
			c := eloapi.NewClient("http://127.0.0.1:1/api/fighters", srv.URL)
			_, err := c.Entities(ctx)

			Convey("Then a network error is returned", func() {
				So(errors.Is(err, eloapi.ErrNetwork), ShouldBeTrue)
			})
		})
	})
}

func TestClient_History(t *testing.T) {
	Convey("Given a rating server", t, func() {
		srv := newRatingServer()
		defer srv.Close()
		ctx := context.Background()
		c := eloapi.NewClient(srv.URL+"/api/fighters", srv.URL+"/api/elo_history/")

		Convey("When the history exists", func() {
			res, err := c.History(ctx, "1")

			Convey("Then points keep source order and parse dates", func() {
				So(err, ShouldBeNil)
				So(res.EntityID, ShouldEqual, "1")
				So(res.EntityName, ShouldEqual, "A")
				So(len(res.Points), ShouldEqual, 2)
				So(res.Points[0].At.Year(), ShouldEqual, 2020)
				So(res.Points[0].Rating, ShouldEqual, 1500)
				So(res.Points[1].At.Month(), ShouldEqual, time.June)
				So(res.Points[1].Rating, ShouldEqual, 1600)
			})
		})

		Convey("When the history is empty", func() {
			res, err := c.History(ctx, "2")

			Convey("Then it is a valid result without points", func() {
				So(err, ShouldBeNil)
				So(res.EntityName, ShouldEqual, "B")
				So(res.IsEmpty(), ShouldBeTrue)
			})
		})

		Convey("When labels are numbers", func() {
			res, err := c.History(ctx, "6")

			Convey("Then years and millisecond timestamps are accepted", func() {
				So(err, ShouldBeNil)
				So(res.Points[0].At.Year(), ShouldEqual, 2019)
				So(res.Points[1].At.Year(), ShouldEqual, 2020)
			})
		})

		Convey("When the entity is unknown", func() {
			_, err := c.History(ctx, "999")

			Convey("Then the server's error message is used", func() {
				So(errors.Is(err, eloapi.ErrAPI), ShouldBeTrue)
				var apiErr *eloapi.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.StatusCode, ShouldEqual, http.StatusNotFound)
				So(apiErr.Message, ShouldEqual, "Fighter not found")
				So(apiErr.EntityID, ShouldEqual, "999")
			})
		})

		Convey("When the failure body is not structured", func() {
			_, err := c.History(ctx, "500")

			Convey("Then the status text is used", func() {
				var apiErr *eloapi.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Message, ShouldEqual, "Internal Server Error")
			})
		})

		Convey("When the payload is malformed", func() {
			for _, id := range []string{"3", "4", "5"} {
				_, err := c.History(ctx, id)
				So(errors.Is(err, eloapi.ErrAPI), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "malformed history payload")
			}
		})

		Convey("When the server does not answer in time", func() {
			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer slow.Close()
			sc := eloapi.NewClient(slow.URL, slow.URL, eloapi.WithTimeout(50*time.Millisecond))
			_, err := sc.History(ctx, "1")

			Convey("Then it is a network error naming the entity", func() {
				So(errors.Is(err, eloapi.ErrNetwork), ShouldBeTrue)
				So(errors.Is(err, eloapi.ErrAPI), ShouldBeFalse)
				var netErr *eloapi.NetworkError
				So(errors.As(err, &netErr), ShouldBeTrue)
				So(netErr.EntityID, ShouldEqual, "1")
			})
		})
	})
}
