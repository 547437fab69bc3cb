package calc

import "fmt"

// Rendered text in the fixed Arabic locale of the data.
const (
	IncompleteMarker       = "(بيانات غير مكتملة)"
	invalidPackingSizeText = "عدد الكتب بالكرتون غير صحيح."
)

// QuantityLine renders the packing decision as a sentence.
func (r Result) QuantityLine() string {
	switch r.Kind {
	case Exact:
		return fmt.Sprintf("%d كرتون بالضبط.", r.Cartons)
	case Add:
		return fmt.Sprintf("%d كرتون، مع إضافة %d كتاب.", r.Cartons, r.BooksToAdd)
	case Subtract:
		return fmt.Sprintf("%d كرتون، مع إنقاص %d كتاب.", r.Cartons, r.BooksToRemove)
	default:
		return invalidPackingSizeText
	}
}

// CartonText renders whole cartons plus loose books, as used in the tabular
// export's required-quantity column.
func (r Result) CartonText() string {
	if r.BooksPerCarton <= 0 {
		return "0"
	}
	if r.Remainder == 0 {
		return fmt.Sprintf("%d كرتون", r.FullCartons)
	}
	return fmt.Sprintf("%d كرتون و %d كتاب", r.FullCartons, r.Remainder)
}

// TotalLine renders the total books and the distribution percentage.
func (r Result) TotalLine() string {
	return fmt.Sprintf("%d كتاب (بنسبة %d%%)", r.TotalBooksNeeded, r.Distribution)
}

// BreakdownLine renders the carton fractions.
func (r Result) BreakdownLine() string {
	b := r.Breakdown
	return fmt.Sprintf("ربع=%d | نصف=%d | ثلاثة أرباع=%d", b.Quarter, b.Half, b.ThreeQuarters)
}
