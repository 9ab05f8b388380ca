package compose_test

import (
	"testing"
	"time"

	"github.com/okian/elocompare/internal/domain/compose"
	"github.com/okian/elocompare/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func history(name string, ratings ...float64) *model.HistoryResult {
	res := &model.HistoryResult{EntityName: name}
	start := day("2020-01-01")
	for i, r := range ratings {
		res.Points = append(res.Points, model.HistoryPoint{At: start.AddDate(0, i, 0), Rating: r})
	}
	return res
}

func TestCompose(t *testing.T) {
	Convey("Given a composer with the default palette", t, func() {
		c := compose.New()

		Convey("When only the primary slot has a history", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{history("A", 1500, 1540, 1520), nil})

			Convey("Then there is one dataset in source order titled with the name", func() {
				So(out.IsEmpty(), ShouldBeFalse)
				So(len(out.Series), ShouldEqual, 1)
				So(out.Title, ShouldEqual, "A")
				s := out.Series[0]
				So(s.Label, ShouldEqual, "A")
				So(s.ColorIndex, ShouldEqual, 0)
				So(s.Color, ShouldEqual, "#bb86fc")
				So(len(s.Points), ShouldEqual, 3)
				So(s.Points[0].Y, ShouldEqual, 1500)
				So(s.Points[1].Y, ShouldEqual, 1540)
				So(s.Points[2].Y, ShouldEqual, 1520)
			})
		})

		Convey("When only the secondary slot has a history", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{nil, history("B", 1600)})

			Convey("Then the dataset keeps the secondary slot color", func() {
				So(len(out.Series), ShouldEqual, 1)
				So(out.Series[0].ColorIndex, ShouldEqual, 1)
				So(out.Series[0].Color, ShouldEqual, "#03dac6")
				So(out.Title, ShouldEqual, "B")
			})
		})

		Convey("When both slots have histories of different lengths", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{
				history("Short", 1500),
				history("Long", 1500, 1510, 1530, 1490),
			})

			Convey("Then colors follow slots and the title joins both names", func() {
				So(len(out.Series), ShouldEqual, 2)
				So(out.Title, ShouldEqual, "Short vs Long")
				So(out.Series[0].ColorIndex, ShouldEqual, 0)
				So(out.Series[1].ColorIndex, ShouldEqual, 1)
				So(len(out.Series[0].Points), ShouldEqual, 1)
				So(len(out.Series[1].Points), ShouldEqual, 4)
			})
		})

		Convey("When points arrive out of chronological order", func() {
			res := &model.HistoryResult{EntityName: "A", Points: []model.HistoryPoint{
				{At: day("2021-01-01"), Rating: 1600},
				{At: day("2020-01-01"), Rating: 1500},
				{At: day("2020-01-01"), Rating: 1500},
			}}
			out := c.Compose([model.SlotCount]*model.HistoryResult{res, nil})

			Convey("Then they are neither re-sorted nor deduplicated", func() {
				pts := out.Series[0].Points
				So(len(pts), ShouldEqual, 3)
				So(pts[0].X, ShouldEqual, day("2021-01-01"))
				So(pts[1].X, ShouldEqual, day("2020-01-01"))
			})
		})

		Convey("When one history is empty", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{history("A", 1500, 1600), history("B")})

			Convey("Then no dataset is built for it and it is reported", func() {
				So(len(out.Series), ShouldEqual, 1)
				So(out.Title, ShouldEqual, "A")
				So(out.Empty, ShouldResemble, []string{"B"})
			})
		})

		Convey("When an empty history has no display name", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{nil, {}})

			Convey("Then the slot placeholder is reported", func() {
				So(out.Empty, ShouldResemble, []string{"Fighter 2"})
				So(out.IsEmpty(), ShouldBeTrue)
				So(out.Title, ShouldEqual, compose.PlaceholderTitle)
			})
		})

		Convey("When nothing was fetched", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{})

			Convey("Then the composition is empty with the placeholder title", func() {
				So(out.IsEmpty(), ShouldBeTrue)
				So(out.Title, ShouldEqual, compose.PlaceholderTitle)
				So(out.Empty, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a composer with a custom palette", t, func() {
		c := compose.New(compose.WithPalette([]string{"#ff0000", "#00ff00"}))

		Convey("Then slot colors come from it", func() {
			out := c.Compose([model.SlotCount]*model.HistoryResult{history("A", 1), history("B", 2)})
			So(out.Series[0].Color, ShouldEqual, "#ff0000")
			So(out.Series[1].Color, ShouldEqual, "#00ff00")
		})

		Convey("Then a too-short palette is ignored", func() {
			c2 := compose.New(compose.WithPalette([]string{"#ffffff"}))
			So(c2.Palette(), ShouldResemble, compose.DefaultPalette)
		})
	})
}
