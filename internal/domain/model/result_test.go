package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/pacematch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchJSONShape(t *testing.T) {
	Convey("Given a match", t, func() {
		m := model.Match{
			EventID:           "NY19",
			Name:              "Jon Smith",
			FinishTimeSeconds: 10830,
			Gender:            "M",
			AgeLower:          30,
			AgeUpper:          34,
			ShoeDescription:   "Nike Vaporfly",
		}

		Convey("When encoding it as JSON", func() {
			b, err := json.Marshal(m)
			So(err, ShouldBeNil)

			var fields map[string]any
			So(json.Unmarshal(b, &fields), ShouldBeNil)

			Convey("Then every output column is present", func() {
				for _, col := range model.MatchColumns {
					So(fields, ShouldContainKey, col)
				}
				So(len(fields), ShouldEqual, len(model.MatchColumns))
			})
		})
	})

	Convey("The default age bracket is the widest possible", t, func() {
		So(model.DefaultAgeLower, ShouldEqual, 0)
		So(model.DefaultAgeUpper, ShouldEqual, 120)
	})
}
