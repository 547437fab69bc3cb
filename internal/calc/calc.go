// Package calc computes how many cartons of books a subject needs.
//
// The packing decision rounds to the nearer of "truncate down and add the
// remainder" and "round up and remove the shortfall". A remainder of exactly
// half a carton adds books rather than removing them.
package calc

import (
	"math"
	"math/bits"
)

// Kind classifies the packing decision.
type Kind int

const (
	// InvalidPackingSize is reported when booksPerCarton is zero or negative.
	InvalidPackingSize Kind = iota
	// Exact means the total fills whole cartons.
	Exact
	// Add means FullCartons cartons plus Remainder loose books.
	Add
	// Subtract means FullCartons+1 cartons minus a few books.
	Subtract
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	default:
		return "invalid_packing_size"
	}
}

// MarshalText renders the kind by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Breakdown holds display-only carton fractions. Each value is rounded on
// its own, so Quarter*2 may differ from Half.
type Breakdown struct {
	Quarter       int `json:"quarter"`
	Half          int `json:"half"`
	ThreeQuarters int `json:"threeQuarters"`
}

// Result is the full calculation for one subject.
type Result struct {
	Students         int       `json:"students"`
	Distribution     int       `json:"distribution"`
	BooksPerCarton   int       `json:"booksPerCarton"`
	TotalBooksNeeded int       `json:"totalBooksNeeded"`
	Kind             Kind      `json:"kind"`
	FullCartons      int       `json:"fullCartons"`
	Remainder        int       `json:"remainder"`
	Cartons          int       `json:"cartons"`
	BooksToAdd       int       `json:"booksToAdd,omitempty"`
	BooksToRemove    int       `json:"booksToRemove,omitempty"`
	Breakdown        Breakdown `json:"breakdown"`
}

// Calculate is a pure function of its three inputs.
func Calculate(students, distributionPercent, booksPerCarton int) Result {
	res := Result{
		Students:         students,
		Distribution:     distributionPercent,
		BooksPerCarton:   booksPerCarton,
		TotalBooksNeeded: TotalBooksNeeded(students, distributionPercent),
		Breakdown:        BreakdownFor(booksPerCarton),
	}
	if booksPerCarton <= 0 {
		res.Kind = InvalidPackingSize
		return res
	}
	res.FullCartons = floorDiv(res.TotalBooksNeeded, booksPerCarton)
	res.Remainder = floorMod(res.TotalBooksNeeded, booksPerCarton)
	switch {
	case res.Remainder == 0:
		res.Kind = Exact
		res.Cartons = res.FullCartons
	case res.Remainder <= booksPerCarton-res.Remainder:
		res.Kind = Add
		res.Cartons = res.FullCartons
		res.BooksToAdd = res.Remainder
	default:
		res.Kind = Subtract
		res.Cartons = res.FullCartons + 1
		res.BooksToRemove = booksPerCarton - res.Remainder
	}
	return res
}

// TotalBooksNeeded returns ceil(students * distributionPercent / 100) using
// exact integer arithmetic. The product is formed in 128 bits; results
// outside the int range saturate.
func TotalBooksNeeded(students, distributionPercent int) int {
	negative := (students < 0) != (distributionPercent < 0)
	hi, lo := bits.Mul64(magnitude(students), magnitude(distributionPercent))
	if hi >= 100 {
		if negative {
			return math.MinInt
		}
		return math.MaxInt
	}
	q, r := bits.Div64(hi, lo, 100)
	if negative {
		// truncation is the ceiling for negative quotients
		if q > uint64(math.MaxInt) {
			return math.MinInt
		}
		return -int(q)
	}
	if q >= uint64(math.MaxInt) {
		return math.MaxInt
	}
	if r != 0 {
		q++
	}
	return int(q)
}

func magnitude(v int) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// BreakdownFor returns the quarter, half and three-quarter carton sizes.
func BreakdownFor(booksPerCarton int) Breakdown {
	bpc := float64(booksPerCarton)
	return Breakdown{
		Quarter:       roundHalfUp(bpc / 4),
		Half:          roundHalfUp(bpc / 2),
		ThreeQuarters: roundHalfUp(bpc / 4 * 3),
	}
}

// Incomplete reports whether the inputs are missing a positive value. Such
// subjects are shown with an "incomplete" marker instead of a calculation.
func Incomplete(students, distributionPercent, booksPerCarton int) bool {
	return students <= 0 || booksPerCarton <= 0 || distributionPercent <= 0
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}
