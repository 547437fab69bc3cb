package calc

import (
	"fmt"

	"bookdist/pkg/domain"
)

// SubjectReport is the per-subject entry of a class report. Result is nil for
// incomplete subjects.
type SubjectReport struct {
	SubjectID  string  `json:"subjectId"`
	Name       string  `json:"name"`
	Incomplete bool    `json:"incomplete"`
	Result     *Result `json:"result,omitempty"`
}

// SummaryLine renders the subject as a single summary-view line.
func (s SubjectReport) SummaryLine() string {
	if s.Incomplete || s.Result == nil {
		return s.Name + " " + IncompleteMarker
	}
	return s.Name + ": " + s.Result.QuantityLine()
}

// ClassReport collects the calculations for every subject of one class.
type ClassReport struct {
	SchoolID     string          `json:"schoolId"`
	ClassID      string          `json:"classId"`
	Title        string          `json:"title"`
	SummaryTitle string          `json:"summaryTitle"`
	Subjects     []SubjectReport `json:"subjects"`
}

// Summary renders the summary view: its title followed by one line per subject.
func (r ClassReport) Summary() []string {
	out := make([]string, 0, len(r.Subjects)+1)
	out = append(out, r.SummaryTitle)
	for _, s := range r.Subjects {
		out = append(out, s.SummaryLine())
	}
	return out
}

// ReportClass calculates every subject of class within school.
func ReportClass(school domain.School, class domain.Class) ClassReport {
	title := fmt.Sprintf("%s - %s", school.DisplayName(), class.Name)
	report := ClassReport{
		SchoolID:     school.ID,
		ClassID:      class.ID,
		Title:        title,
		SummaryTitle: "ملخص: " + title,
		Subjects:     make([]SubjectReport, 0, len(class.Subjects)),
	}
	for _, subject := range class.Subjects {
		entry := SubjectReport{SubjectID: subject.ID, Name: subject.DisplayName()}
		if subject.Incomplete() {
			entry.Incomplete = true
		} else {
			res := Calculate(subject.Students, subject.Distribution, subject.BooksPerCarton)
			entry.Result = &res
		}
		report.Subjects = append(report.Subjects, entry)
	}
	return report
}
