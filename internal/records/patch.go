package records

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"

	"bookdist/pkg/domain"
)

// SchoolPatch carries a partial school update; nil fields are left alone.
type SchoolPatch struct {
	Name *string `json:"name,omitempty"`
}

// ClassPatch carries a partial class update.
type ClassPatch struct {
	Name *string `json:"name,omitempty"`
}

// SubjectPatch carries a partial subject update.
type SubjectPatch struct {
	Name           *string `json:"name,omitempty"`
	Students       *int    `json:"students,omitempty"`
	Distribution   *int    `json:"distribution,omitempty"`
	BooksPerCarton *int    `json:"booksPerCarton,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SubjectPatch) Empty() bool {
	return p.Name == nil && p.Students == nil && p.Distribution == nil && p.BooksPerCarton == nil
}

// UpdateSchool applies patch to the school with the given id.
func UpdateSchool(tree []domain.School, schoolID string, patch SchoolPatch) ([]domain.School, bool) {
	return mapSchool(tree, schoolID, func(s domain.School) domain.School {
		if patch.Name != nil {
			s.Name = *patch.Name
		}
		return s
	})
}

// UpdateClass applies patch to one class. A name outside the canonical
// grade labels leaves the tree unchanged.
func UpdateClass(tree []domain.School, schoolID, classID string, patch ClassPatch) ([]domain.School, bool) {
	if patch.Name != nil && !domain.IsClassLabel(*patch.Name) {
		return tree, false
	}
	return mapClass(tree, schoolID, classID, func(c domain.Class) domain.Class {
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		return c
	})
}

// UpdateSubject applies patch to one subject.
func UpdateSubject(tree []domain.School, schoolID, classID, subjectID string, patch SubjectPatch) ([]domain.School, bool) {
	return mapSubject(tree, schoolID, classID, subjectID, func(s domain.Subject) domain.Subject {
		if patch.Name != nil {
			s.Name = *patch.Name
		}
		if patch.Students != nil {
			s.Students = *patch.Students
		}
		if patch.Distribution != nil {
			s.Distribution = *patch.Distribution
		}
		if patch.BooksPerCarton != nil {
			s.BooksPerCarton = *patch.BooksPerCarton
		}
		return s
	})
}

// Default subject value fields accepted by SetDefaultSubjectValue.
const (
	FieldStudents       = "students"
	FieldDistribution   = "distribution"
	FieldBooksPerCarton = "booksPerCarton"
)

// ErrUnknownField is returned for a default-value field name outside the
// three known fields.
var ErrUnknownField = errors.New("unknown default subject field")

// SetDefaultSubjectValue parses raw leniently and stores it in one field of
// the school's subject defaults. Existing subjects are not touched.
func SetDefaultSubjectValue(tree []domain.School, schoolID, field, raw string) ([]domain.School, bool, error) {
	switch field {
	case FieldStudents, FieldDistribution, FieldBooksPerCarton:
	default:
		return tree, false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	value := ParseCount(raw)
	out, ok := mapSchool(tree, schoolID, func(s domain.School) domain.School {
		d := s.Defaults()
		switch field {
		case FieldStudents:
			d.Students = value
		case FieldDistribution:
			d.Distribution = value
		case FieldBooksPerCarton:
			d.BooksPerCarton = value
		}
		s.DefaultSubjectValues = &d
		return s
	})
	return out, ok, nil
}

// MaxCount bounds every parsed count. Larger magnitudes are clamped to it.
const MaxCount = math.MaxInt32

// ParseCount reads a leading base-10 integer the way a browser number field
// does: leading whitespace and one sign are accepted, parsing stops at the
// first non-digit, and input without leading digits yields 0. Values beyond
// MaxCount in either direction are clamped.
func ParseCount(raw string) int {
	runes := []rune(raw)
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	negative := false
	if i < len(runes) && (runes[i] == '+' || runes[i] == '-') {
		negative = runes[i] == '-'
		i++
	}
	start := i
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	digits := string(runes[start:i])
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > MaxCount {
		n = MaxCount
	}
	if negative {
		return -int(n)
	}
	return int(n)
}
