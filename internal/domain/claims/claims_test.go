package claims_test

import (
	"testing"

	"github.com/okian/trainsync/internal/domain/claims"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClaimSet(t *testing.T) {
	Convey("Given an empty claim set", t, func() {
		s := claims.NewSet()

		Convey("When claiming fresh ids", func() {
			err := s.Claim("101", "102")

			Convey("Then the claim succeeds and the ids are held", func() {
				So(err, ShouldBeNil)
				So(s.Claimed("101"), ShouldBeTrue)
				So(s.Claimed("102"), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 2)
			})
		})

		Convey("When claiming an id twice", func() {
			So(s.Claim("101"), ShouldBeNil)
			err := s.Claim("101")

			Convey("Then the second claim is rejected", func() {
				So(err, ShouldEqual, claims.ErrAlreadyClaimed)
				So(s.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a bundle overlaps an existing claim", func() {
			So(s.Claim("101"), ShouldBeNil)
			err := s.Claim("102", "101", "103")

			Convey("Then nothing from the bundle is recorded", func() {
				So(err, ShouldEqual, claims.ErrAlreadyClaimed)
				So(s.Claimed("102"), ShouldBeFalse)
				So(s.Claimed("103"), ShouldBeFalse)
				So(s.Size(), ShouldEqual, 1)
			})
		})

		Convey("When checking a bundle before assignment", func() {
			So(s.Claim("101"), ShouldBeNil)

			Convey("Then AllUnclaimed rejects any overlap", func() {
				So(s.AllUnclaimed([]string{"102", "103"}), ShouldBeTrue)
				So(s.AllUnclaimed([]string{"101", "102"}), ShouldBeFalse)
				So(s.AllUnclaimed(nil), ShouldBeTrue)
			})
		})
	})
}
