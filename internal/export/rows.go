package export

import (
	"bookdist/internal/calc"
	"bookdist/pkg/domain"
)

// TabularHeaders are the column labels of the spreadsheet exports.
var TabularHeaders = []string{
	"المدرسة", "الصف", "المادة", "عدد الطلاب", "نسبة التوزيع", "الكتب بالكرتون", "إجمالي الكتب", "الكمية المطلوبة",
}

// Row is one complete subject in the spreadsheet exports.
type Row struct {
	School         string
	Class          string
	Subject        string
	Students       int
	Distribution   int
	BooksPerCarton int
	TotalBooks     int
	Quantity       string
}

// TabularRows flattens the tree in order, skipping incomplete subjects.
func TabularRows(schools []domain.School) []Row {
	var rows []Row
	for _, school := range schools {
		for _, class := range school.Classes {
			for _, subject := range class.Subjects {
				if subject.Incomplete() {
					continue
				}
				res := calc.Calculate(subject.Students, subject.Distribution, subject.BooksPerCarton)
				rows = append(rows, Row{
					School:         school.DisplayName(),
					Class:          class.Name,
					Subject:        subject.DisplayName(),
					Students:       subject.Students,
					Distribution:   subject.Distribution,
					BooksPerCarton: subject.BooksPerCarton,
					TotalBooks:     res.TotalBooksNeeded,
					Quantity:       res.CartonText(),
				})
			}
		}
	}
	return rows
}
