package roster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/adapters/selection"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/internal/roster"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	entities []model.Entity
	err      error
	calls    int
}

func (s *stubSource) Entities(context.Context) ([]model.Entity, error) {
	s.calls++
	return s.entities, s.err
}

func TestLoader_Load(t *testing.T) {
	Convey("Given two selection controls", t, func() {
		ctx := context.Background()
		primary, secondary := selection.New("primary"), selection.New("secondary")
		var notified []string
		for _, c := range []*selection.Control{primary, secondary} {
			c.Subscribe(func(_ context.Context, s selection.Snapshot) { notified = append(notified, s.Name) })
		}
		controls := []roster.Control{primary, secondary}

		Convey("When the roster loads", func() {
			src := &stubSource{entities: []model.Entity{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}}
			n, err := roster.NewLoader(src, controls).Load(ctx)

			Convey("Then both controls get every option and are notified", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				So(src.calls, ShouldEqual, 1)
				So(primary.Options(), ShouldResemble, src.entities)
				So(secondary.Options(), ShouldResemble, src.entities)
				So(notified, ShouldResemble, []string{"primary", "secondary"})
			})
		})

		Convey("When the roster request fails", func() {
			src := &stubSource{err: &eloapi.NetworkError{Err: errors.New("connection refused")}}
			n, err := roster.NewLoader(src, controls).Load(ctx)

			Convey("Then the controls stay empty and the error is returned", func() {
				So(n, ShouldEqual, 0)
				So(errors.Is(err, eloapi.ErrNetwork), ShouldBeTrue)
				So(primary.Options(), ShouldBeEmpty)
				So(secondary.Options(), ShouldBeEmpty)
				So(notified, ShouldBeEmpty)
			})
		})
	})
}
