// Package domain defines the persisted record tree (schools, classes and
// subjects), the archive log entries and the user settings used by bookdist.
package domain

import "fmt"

// Hardwired subject defaults applied to subjects created together with a new
// class or school, and to schools loaded without defaultSubjectValues.
const (
	DefaultStudents       = 0
	DefaultDistribution   = 100
	DefaultBooksPerCarton = 0
)

// ClassLabelCount is the number of canonical grade-level labels.
const ClassLabelCount = 12

// ClassLabel returns the canonical label for grade n (1-based). Values outside
// 1..ClassLabelCount are clamped.
func ClassLabel(n int) string {
	if n < 1 {
		n = 1
	}
	if n > ClassLabelCount {
		n = ClassLabelCount
	}
	return fmt.Sprintf("الصف %d", n)
}

// ClassLabels lists the canonical grade-level labels in order.
func ClassLabels() []string {
	out := make([]string, 0, ClassLabelCount)
	for i := 1; i <= ClassLabelCount; i++ {
		out = append(out, ClassLabel(i))
	}
	return out
}

// IsClassLabel reports whether name is one of the canonical labels.
func IsClassLabel(name string) bool {
	for i := 1; i <= ClassLabelCount; i++ {
		if name == ClassLabel(i) {
			return true
		}
	}
	return false
}

// Subject is a single book line within a class.
type Subject struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Students       int    `json:"students"`
	Distribution   int    `json:"distribution"`
	BooksPerCarton int    `json:"booksPerCarton"`
}

// Incomplete reports whether the subject lacks a positive student count,
// distribution percentage or packing size. Incomplete subjects are excluded
// from calculations and from the tabular export.
func (s Subject) Incomplete() bool {
	return s.Students <= 0 || s.BooksPerCarton <= 0 || s.Distribution <= 0
}

// Class is a grade within a school. It always owns at least one subject.
type Class struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects"`
}

// DefaultSubjectValues pre-fill subjects added to an existing class.
type DefaultSubjectValues struct {
	Students       int `json:"students"`
	Distribution   int `json:"distribution"`
	BooksPerCarton int `json:"booksPerCarton"`
}

// BaselineSubjectValues returns the hardwired {0, 100, 0} defaults.
func BaselineSubjectValues() DefaultSubjectValues {
	return DefaultSubjectValues{
		Students:       DefaultStudents,
		Distribution:   DefaultDistribution,
		BooksPerCarton: DefaultBooksPerCarton,
	}
}

// School is the root of the record tree. It always owns at least one class.
// DefaultSubjectValues is a pointer only so that records written before the
// field existed can be detected on load; a loaded school always has it set.
type School struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Classes              []Class               `json:"classes"`
	DefaultSubjectValues *DefaultSubjectValues `json:"defaultSubjectValues,omitempty"`
}

// Defaults returns the school's subject defaults, falling back to the
// baseline when unset.
func (s School) Defaults() DefaultSubjectValues {
	if s.DefaultSubjectValues == nil {
		return BaselineSubjectValues()
	}
	return *s.DefaultSubjectValues
}

// DefaultNames used whenever a blank school or subject name is displayed or exported.
const (
	UnnamedSchool  = "مدرسة بدون اسم"
	UnnamedSubject = "مادة بدون اسم"
)

// DisplayName returns the school name or the unnamed placeholder.
func (s School) DisplayName() string {
	if s.Name == "" {
		return UnnamedSchool
	}
	return s.Name
}

// DisplayName returns the subject name or the unnamed placeholder.
func (s Subject) DisplayName() string {
	if s.Name == "" {
		return UnnamedSubject
	}
	return s.Name
}
