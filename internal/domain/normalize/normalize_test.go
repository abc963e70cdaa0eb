package normalize_test

import (
	"errors"
	"testing"

	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseAge(t *testing.T) {
	Convey("Given age expressions", t, func() {
		cases := []struct {
			expr         string
			lower, upper int
		}{
			{"35-39", 35, 39},
			{"18-", 18, 120},
			{"-19", 0, 19},
			{"", 0, 120},
			{"80+", 0, 120},
			{"  40-44 ", 40, 44},
		}
		for _, c := range cases {
			lower, upper, err := normalize.ParseAge(c.expr)
			So(err, ShouldBeNil)
			So(lower, ShouldEqual, c.lower)
			So(upper, ShouldEqual, c.upper)
		}
	})

	Convey("Given brackets that cannot be a valid age range", t, func() {
		for _, expr := range []string{"45-40", "100-130", "-200", "40-40", "0-0", "120-"} {
			_, _, err := normalize.ParseAge(expr)
			So(errors.Is(err, normalize.ErrFormat), ShouldBeTrue)
		}
	})
}

func TestOfficial(t *testing.T) {
	Convey("Given official rows", t, func() {
		rows := []normalize.OfficialRow{
			{Line: 1, Name: "John Smith", GenderAge: "M30-34", Time: "3:00:00"},
			{Line: 2, Name: "Jane Doe", GenderAge: "F", Time: "3:30:15"},
			{Line: 3, Name: "", GenderAge: "M40-44", Time: "3:00:00"},
			{Line: 4, Name: "Bad Time", GenderAge: "M40-44", Time: "DNF"},
			{Line: 5, Name: "No Time", GenderAge: "M40-44", Time: ""},
			{Line: 6, Name: "Old Runner", GenderAge: "M18-", Time: "4:10:00"},
		}

		batch := normalize.Official("NY19", rows)

		Convey("Then valid rows become records", func() {
			So(batch.Records, ShouldHaveLength, 3)

			first := batch.Records[0]
			So(first.Name, ShouldEqual, "John Smith")
			So(first.Gender, ShouldEqual, "M")
			So(first.EventID, ShouldEqual, "NY19")
			So(first.FinishTimeSeconds, ShouldEqual, 10800)
			So(first.AgeLower, ShouldEqual, 30)
			So(first.AgeUpper, ShouldEqual, 34)
		})

		Convey("And missing brackets are defaulted", func() {
			jane := batch.Records[1]
			So(jane.Gender, ShouldEqual, "F")
			So(jane.AgeLower, ShouldEqual, model.DefaultAgeLower)
			So(jane.AgeUpper, ShouldEqual, model.DefaultAgeUpper)

			old := batch.Records[2]
			So(old.AgeLower, ShouldEqual, 18)
			So(old.AgeUpper, ShouldEqual, 120)
		})

		Convey("And invalid rows are reported with their line and reason", func() {
			So(batch.Dropped, ShouldHaveLength, 3)
			So(batch.Dropped[0].Line, ShouldEqual, 3)
			So(batch.Dropped[0].Source, ShouldEqual, normalize.SourceOfficial)
			So(errors.Is(batch.Dropped[0].Err, normalize.ErrMissingField), ShouldBeTrue)
			So(batch.Dropped[1].Line, ShouldEqual, 4)
			So(errors.Is(batch.Dropped[1].Err, normalize.ErrFormat), ShouldBeTrue)
			So(errors.Is(batch.Dropped[2].Err, normalize.ErrMissingField), ShouldBeTrue)
		})
	})

	Convey("Given an upper-case official export", t, func() {
		rows := []normalize.OfficialRow{
			{Line: 1, Name: "JOHN SMITH", GenderAge: "M30-34", Time: "3:00:00"},
			{Line: 2, Name: "MARY ANN LEE", GenderAge: "F25-29", Time: "3:10:00"},
		}

		batch := normalize.Official("BS18", rows)

		Convey("Then every name is title-cased", func() {
			So(batch.Records[0].Name, ShouldEqual, "John Smith")
			So(batch.Records[1].Name, ShouldEqual, "Mary Ann Lee")
		})
	})

	Convey("Given a mixed-case export whose sampled row is not upper-case", t, func() {
		rows := []normalize.OfficialRow{
			{Line: 1, Name: "JOHN SMITH", GenderAge: "M30-34", Time: "3:00:00"},
			{Line: 2, Name: "Mary Lee", GenderAge: "F25-29", Time: "3:10:00"},
		}

		batch := normalize.Official("BS18", rows)

		Convey("Then names are left as they are", func() {
			So(batch.Records[0].Name, ShouldEqual, "JOHN SMITH")
			So(batch.Records[1].Name, ShouldEqual, "Mary Lee")
		})
	})
}

func TestCommunity(t *testing.T) {
	Convey("Given community rows", t, func() {
		rows := []normalize.CommunityRow{
			{Line: 2, EventID: "NY19", Name: "Jon Smith", Gender: "M", Shoes: "Nike Vaporfly", Time: "3:00:30", Age: "30-34"},
			{Line: 3, EventID: "NY19", Name: "Ann Runner", Gender: "F", Shoes: "", Time: "4:05:00", Age: ""},
			{Line: 4, EventID: "NY19", Name: "Slow Poke", Gender: "M", Time: "10:05:00", Age: "40-44"},
			{Line: 5, EventID: "NY19", Name: "Paced", Gender: "M", Time: "5:12/km", Age: "40-44"},
			{Line: 6, EventID: "NY19", Name: "Odd", Gender: "M", Time: "3:99:00", Age: "40-44"},
			{Line: 7, EventID: "NY19", Name: "", Gender: "M", Time: "3:00:00", Age: "40-44"},
			{Line: 8, EventID: "NY19", Name: "Bracket", Gender: "M", Time: "3:00:00", Age: "50-45"},
		}

		batch := normalize.Community(rows)

		Convey("Then rows with H:M:S finish times are kept", func() {
			So(batch.Records, ShouldHaveLength, 2)
			jon := batch.Records[0]
			So(jon.EventID, ShouldEqual, "NY19")
			So(jon.ShoeDescription, ShouldEqual, "Nike Vaporfly")
			So(jon.FinishTimeSeconds, ShouldEqual, 3*3600+30)
			So(jon.AgeLower, ShouldEqual, 30)
			So(jon.AgeUpper, ShouldEqual, 34)

			ann := batch.Records[1]
			So(ann.ShoeDescription, ShouldBeEmpty)
			So(ann.AgeLower, ShouldEqual, 0)
			So(ann.AgeUpper, ShouldEqual, 120)
		})

		Convey("And the rest are dropped with a reason", func() {
			So(batch.Dropped, ShouldHaveLength, 5)
			lines := make([]int, 0, len(batch.Dropped))
			for _, d := range batch.Dropped {
				lines = append(lines, d.Line)
				So(d.Source, ShouldEqual, normalize.SourceCommunity)
			}
			So(lines, ShouldResemble, []int{4, 5, 6, 7, 8})
			So(errors.Is(batch.Dropped[0].Err, normalize.ErrFormat), ShouldBeTrue)
			So(errors.Is(batch.Dropped[3].Err, normalize.ErrMissingField), ShouldBeTrue)
			So(batch.Dropped[0].String(), ShouldContainSubstring, "community line 4")
		})
	})
}

func TestNormalizedBracketInvariant(t *testing.T) {
	Convey("Given a mix of age expressions", t, func() {
		exprs := []string{"", "18-", "-19", "20-24", "80+", "99-120", "0-1", "M", "--", "x-y"}
		rows := make([]normalize.CommunityRow, 0, len(exprs))
		for i, e := range exprs {
			rows = append(rows, normalize.CommunityRow{Line: i + 1, Name: "R", Gender: "M", Time: "3:00:00", Age: e})
		}

		batch := normalize.Community(rows)

		Convey("Then every kept record satisfies 0 <= lower < upper <= 120", func() {
			So(batch.Records, ShouldHaveLength, len(exprs))
			for _, r := range batch.Records {
				So(r.AgeLower, ShouldBeGreaterThanOrEqualTo, 0)
				So(r.AgeLower, ShouldBeLessThan, r.AgeUpper)
				So(r.AgeUpper, ShouldBeLessThanOrEqualTo, 120)
			}
		})
	})
}
