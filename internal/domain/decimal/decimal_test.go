package decimal_test

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/okian/brc/internal/domain/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

// canonical values round-trip through parse and display.
var canonical = []string{"0.0", "1.0", "123.5", "-1.0", "-1.4", "-0.2", "-100.3", "99.9", "-99.9"}

func TestParseStrict(t *testing.T) {
	Convey("Given the strict parser", t, func() {
		Convey("When parsing valid values", func() {
			cases := map[string]decimal.Tenths{
				"12.3":        123,
				"-0.1":        -1,
				"0.0":         0,
				"123456789.0": 1234567890,
			}
			Convey("Then it should return the value in tenths", func() {
				for in, want := range cases {
					got, err := decimal.ParseStrict([]byte(in))
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
				}
			})
		})

		Convey("When parsing malformed values", func() {
			cases := map[string]error{
				"":          decimal.ErrEmpty,
				"12345.6 ":  decimal.ErrTrailingCharacters,
				"1.23":      decimal.ErrTrailingCharacters,
				"foo0.1":    decimal.ErrInvalidCharacter,
				"abc":       decimal.ErrInvalidCharacter,
				"+1.0":      decimal.ErrInvalidCharacter,
				"1.0.0":     decimal.ErrTrailingCharacters,
				"1..0":      decimal.ErrInvalidCharacter,
				"-.5":       decimal.ErrInvalidCharacter,
				".5":        decimal.ErrInvalidCharacter,
				"--1.0":     decimal.ErrInvalidCharacter,
				"1e3.0":     decimal.ErrInvalidCharacter,
				"1,000.0":   decimal.ErrInvalidCharacter,
				"-123":      decimal.ErrTruncated,
				"12.":       decimal.ErrTruncated,
				"-":         decimal.ErrTruncated,
				"1.x":       decimal.ErrInvalidCharacter,
				"12.3\n":    decimal.ErrTrailingCharacters,
				";12.3":     decimal.ErrInvalidCharacter,
				"12.3;":     decimal.ErrTrailingCharacters,
				"\x0012.3":  decimal.ErrInvalidCharacter,
				"12\x00.3":  decimal.ErrInvalidCharacter,
				"99999.99a": decimal.ErrTrailingCharacters,
			}
			Convey("Then it should reject each with the matching kind", func() {
				for in, want := range cases {
					_, err := decimal.ParseStrict([]byte(in))
					So(errors.Is(err, want), ShouldBeTrue)
					So(errors.Is(err, decimal.ErrMalformedNumber), ShouldBeTrue)
				}
			})
		})

		Convey("When displaying canonical values", func() {
			Convey("Then they should round-trip", func() {
				for _, s := range canonical {
					v, err := decimal.ParseStrict([]byte(s))
					So(err, ShouldBeNil)
					So(v.String(), ShouldEqual, s)
				}
			})
		})
	})
}

func TestParseRelaxed(t *testing.T) {
	Convey("Given the relaxed parser", t, func() {
		Convey("When parsing valid values", func() {
			So(decimal.Parse([]byte("12.3")), ShouldEqual, decimal.Tenths(123))
			So(decimal.Parse([]byte("-0.1")), ShouldEqual, decimal.Tenths(-1))
			So(decimal.Parse([]byte("123456789.0")), ShouldEqual, decimal.Tenths(1234567890))
		})

		Convey("When the separator leaks into the input", func() {
			So(decimal.Parse([]byte(";-4.5")), ShouldEqual, decimal.Tenths(-45))
		})

		Convey("When displaying canonical values", func() {
			for _, s := range canonical {
				So(decimal.Parse([]byte(s)).String(), ShouldEqual, s)
			}
		})

		Convey("When compared against the strict parser on random valid input", func() {
			rng := rand.New(rand.NewPCG(1, 2))
			Convey("Then both should agree", func() {
				for range 10_000 {
					s := randomValid(rng)
					strict, err := decimal.ParseStrict([]byte(s))
					So(err, ShouldBeNil)
					So(decimal.Parse([]byte(s)), ShouldEqual, strict)
				}
			})
		})
	})
}

// randomValid builds a string matching -?[0-9]+\.[0-9], leading zeros included.
func randomValid(rng *rand.Rand) string {
	b := make([]byte, 0, 16)
	if rng.IntN(2) == 0 {
		b = append(b, '-')
	}
	for range 1 + rng.IntN(6) {
		b = append(b, byte('0'+rng.IntN(10)))
	}
	return string(append(b, '.', byte('0'+rng.IntN(10))))
}

func TestDiv(t *testing.T) {
	Convey("Given a sum and a count", t, func() {
		Convey("When the quotient lies exactly on a half", func() {
			Convey("Then positive values round away from zero", func() {
				So(decimal.Tenths(25).Div(2), ShouldEqual, decimal.Tenths(13))
				So(decimal.Tenths(25).Div(2).String(), ShouldEqual, "1.3")
			})
			Convey("And negative values round away from zero", func() {
				So(decimal.Tenths(-25).Div(2), ShouldEqual, decimal.Tenths(-13))
			})
		})

		Convey("When the quotient is not a half", func() {
			So(decimal.Tenths(260).Div(2), ShouldEqual, decimal.Tenths(130))
			So(decimal.Tenths(10).Div(3), ShouldEqual, decimal.Tenths(3))
			So(decimal.Tenths(20).Div(3), ShouldEqual, decimal.Tenths(7))
			So(decimal.Tenths(-35).Div(1), ShouldEqual, decimal.Tenths(-35))
		})

		Convey("When the count is zero", func() {
			So(func() { decimal.Tenths(1).Div(0) }, ShouldPanic)
		})
	})
}

func TestCompareAndFormat(t *testing.T) {
	Convey("Given two values", t, func() {
		a, b := decimal.Tenths(-5), decimal.Tenths(7)
		So(a.Compare(b), ShouldEqual, -1)
		So(b.Compare(a), ShouldEqual, 1)
		So(a.Compare(a), ShouldEqual, 0)
		So(a.Add(b), ShouldEqual, decimal.Tenths(2))
		So(b.Float64(), ShouldAlmostEqual, 0.7)
		So(string(a.AppendTo([]byte("x="))), ShouldEqual, "x=-0.5")
		So(decimal.Tenths(1234567890).String(), ShouldEqual, strconv.Itoa(123456789)+".0")
	})
}
