package candidate_test

import (
	"testing"

	"github.com/okian/pacematch/internal/domain/candidate"
	"github.com/okian/pacematch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFilter(t *testing.T) {
	Convey("Given a community record and an official batch", t, func() {
		c := model.CommunityResult{Name: "Jon Smith", Gender: "M", FinishTimeSeconds: 10800}
		officials := []model.OfficialResult{
			{Name: "a", Gender: "M", FinishTimeSeconds: 10740}, // -60, kept
			{Name: "b", Gender: "M", FinishTimeSeconds: 10739}, // -61
			{Name: "c", Gender: "F", FinishTimeSeconds: 10800}, // gender
			{Name: "d", Gender: "M", FinishTimeSeconds: 10860}, // +60, kept
			{Name: "e", Gender: "M", FinishTimeSeconds: 10861}, // +61
			{Name: "f", Gender: "M", FinishTimeSeconds: 10800}, // exact, kept
		}
		snapshot := append([]model.OfficialResult(nil), officials...)

		Convey("When filtering with the default tolerance", func() {
			got := candidate.Filter(c, officials, candidate.DefaultTolerance)

			Convey("Then only same-gender records within the tolerance remain, in order", func() {
				names := make([]string, 0, len(got))
				for _, o := range got {
					names = append(names, o.Name)
				}
				So(names, ShouldResemble, []string{"a", "d", "f"})
			})

			Convey("And the input is untouched", func() {
				So(officials, ShouldResemble, snapshot)
			})
		})

		Convey("When filtering with a zero tolerance", func() {
			got := candidate.Filter(c, officials, 0)

			Convey("Then only exact times remain", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Name, ShouldEqual, "f")
			})
		})

		Convey("When the official batch is empty", func() {
			So(candidate.Filter(c, nil, candidate.DefaultTolerance), ShouldBeEmpty)
		})
	})
}
