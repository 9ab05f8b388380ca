package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		fx := newFixture()
		svc := app.NewService(fx.ctrl, app.WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then the roster was loaded on start", func() {
			st, err := svc.State(ctx)
			So(err, ShouldBeNil)
			So(len(st.Options), ShouldEqual, 3)
		})

		Convey("When selecting and viewing", func() {
			So(svc.Select(ctx, model.SlotPrimary, "1"), ShouldBeNil)
			out, err := svc.View(ctx)

			Convey("Then the chart is rendered", func() {
				So(err, ShouldBeNil)
				So(out.Title, ShouldEqual, "A")
				st, _ := svc.State(ctx)
				So(st.Chart, ShouldNotBeNil)
				So(st.Chart.ID, ShouldEqual, out.ChartID)
			})

			Convey("Then clear removes it", func() {
				So(svc.Clear(ctx), ShouldBeNil)
				st, _ := svc.State(ctx)
				So(st.Chart, ShouldBeNil)
				So(st.Selection.Empty(), ShouldBeTrue)
			})
		})

		Convey("When a second view overtakes a slow first view", func() {
			slow := fx.source.gate("1")

			So(svc.Select(ctx, model.SlotPrimary, "1"), ShouldBeNil)
			first := make(chan app.Outcome, 1)
			go func() {
				out, _ := svc.View(ctx)
				first <- out
			}()

			// The first view is parked in its fetch once "1" was requested.
			So(waitFor(func() bool { return fx.source.callCount() == 1 }), ShouldBeTrue)

			So(svc.Select(ctx, model.SlotPrimary, "3"), ShouldBeNil)
			second, err := svc.View(ctx)
			So(err, ShouldBeNil)
			So(second.Title, ShouldEqual, "C")

			close(slow)
			firstOut := <-first

			Convey("Then the first view's later render wins and one chart is live", func() {
				So(firstOut.Title, ShouldEqual, "A")
				st, err := svc.State(ctx)
				So(err, ShouldBeNil)
				So(st.Chart.Title, ShouldEqual, "A")
				So(st.Chart.ID, ShouldEqual, firstOut.ChartID)
				So(fx.factory.live(), ShouldEqual, 1)
			})
		})

		Convey("When the service has stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)
			_, err := svc.View(ctx)

			Convey("Then actions are rejected", func() {
				So(errors.Is(err, app.ErrStopped), ShouldBeTrue)
				So(app.IsRejected(err), ShouldBeTrue)
			})
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
