package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/okian/elocompare/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func descriptor(label, color string, ratings ...float64) model.SeriesDescriptor {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	d := model.SeriesDescriptor{Label: label, Color: color}
	for i, r := range ratings {
		d.Points = append(d.Points, model.Point{X: start.AddDate(0, i, 0), Y: r})
	}
	return d
}

func TestFactory_Create(t *testing.T) {
	Convey("Given a chart factory", t, func() {
		f := NewFactory(WithSize(400, 200))

		Convey("When two series are charted", func() {
			series := []model.SeriesDescriptor{
				descriptor("A", "#bb86fc", 1500, 1540, 1520),
				descriptor("B", "#03dac6", 1600, 1580),
			}
			inst, err := f.Create(series, "A vs B")

			Convey("Then the instance keeps title and datasets", func() {
				So(err, ShouldBeNil)
				So(inst.ID(), ShouldNotBeEmpty)
				So(inst.Title(), ShouldEqual, "A vs B")
				So(inst.Series(), ShouldResemble, series)
			})

			Convey("Then it renders PNG and SVG", func() {
				var png, svg bytes.Buffer
				So(inst.Render(&png, FormatPNG), ShouldBeNil)
				So(bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
				So(inst.Render(&svg, FormatSVG), ShouldBeNil)
				So(svg.String(), ShouldContainSubstring, "<svg")
				So(svg.String(), ShouldContainSubstring, YAxisName)
			})

			Convey("Then it cannot render after Destroy", func() {
				So(inst.Destroy(), ShouldBeTrue)
				So(inst.Destroy(), ShouldBeFalse)
				So(inst.Destroyed(), ShouldBeTrue)
				err := inst.Render(&bytes.Buffer{}, FormatPNG)
				So(errors.Is(err, ErrDestroyed), ShouldBeTrue)
			})
		})

		Convey("When a series has a single point", func() {
			inst, err := f.Create([]model.SeriesDescriptor{descriptor("A", "#bb86fc", 1500)}, "A")

			Convey("Then it still renders", func() {
				So(err, ShouldBeNil)
				So(len(inst.Series()[0].Points), ShouldEqual, 1)
				So(inst.Render(&bytes.Buffer{}, FormatPNG), ShouldBeNil)
			})
		})

		Convey("When there is nothing to chart", func() {
			_, err := f.Create([]model.SeriesDescriptor{descriptor("A", "#bb86fc")}, "A")

			Convey("Then creation fails", func() {
				So(errors.Is(err, ErrNoSeries), ShouldBeTrue)
			})
		})
	})
}

func TestParseFormat(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := ParseFormat("")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatPNG)

		f, err = ParseFormat("SVG")
		So(err, ShouldBeNil)
		So(f.ContentType(), ShouldEqual, "image/svg+xml")

		_, err = ParseFormat("gif")
		So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
	})
}
