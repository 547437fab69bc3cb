// Package records implements copy-on-write operations over the school tree.
//
// Every function takes the current []domain.School and returns a new slice.
// The input is never modified; only the path from the root to the changed
// node is copied, untouched siblings are shared. Operations addressing an id
// that does not exist return the input unchanged with changed=false.
package records

import (
	"github.com/google/uuid"

	"bookdist/pkg/domain"
)

// IDGenerator produces fresh record identifiers.
type IDGenerator func() string

// NewID returns a random UUIDv4 string.
func NewID() string { return uuid.NewString() }

func (g IDGenerator) next() string {
	if g == nil {
		return NewID()
	}
	return g()
}

// NewSubject returns a blank subject with the hardwired defaults.
func NewSubject(ids IDGenerator) domain.Subject {
	return NewSubjectFromDefaults(ids, domain.BaselineSubjectValues())
}

// NewSubjectFromDefaults returns a blank subject pre-filled from d.
func NewSubjectFromDefaults(ids IDGenerator, d domain.DefaultSubjectValues) domain.Subject {
	return domain.Subject{
		ID:             ids.next(),
		Students:       d.Students,
		Distribution:   d.Distribution,
		BooksPerCarton: d.BooksPerCarton,
	}
}

// NewClass returns a class with the given label and one blank subject.
func NewClass(ids IDGenerator, label string) domain.Class {
	return domain.Class{
		ID:       ids.next(),
		Name:     label,
		Subjects: []domain.Subject{NewSubject(ids)},
	}
}

// NewSchool returns an unnamed school holding one first-grade class.
func NewSchool(ids IDGenerator) domain.School {
	defaults := domain.BaselineSubjectValues()
	return domain.School{
		ID:                   ids.next(),
		Classes:              []domain.Class{NewClass(ids, domain.ClassLabel(1))},
		DefaultSubjectValues: &defaults,
	}
}

// AddSchool appends a new school.
func AddSchool(tree []domain.School, ids IDGenerator) []domain.School {
	out := make([]domain.School, 0, len(tree)+1)
	out = append(out, tree...)
	return append(out, NewSchool(ids))
}

// AddClass appends a class to the school, labelled after the school's class
// count.
func AddClass(tree []domain.School, schoolID string, ids IDGenerator) ([]domain.School, bool) {
	return mapSchool(tree, schoolID, func(s domain.School) domain.School {
		classes := make([]domain.Class, 0, len(s.Classes)+1)
		classes = append(classes, s.Classes...)
		s.Classes = append(classes, NewClass(ids, domain.ClassLabel(len(s.Classes)+1)))
		return s
	})
}

// AddClassToLastSchool appends a class to the last school in the tree.
func AddClassToLastSchool(tree []domain.School, ids IDGenerator) ([]domain.School, bool) {
	if len(tree) == 0 {
		return tree, false
	}
	return AddClass(tree, tree[len(tree)-1].ID, ids)
}

// AddSubject appends a subject pre-filled from the owning school's defaults.
func AddSubject(tree []domain.School, schoolID, classID string, ids IDGenerator) ([]domain.School, bool) {
	idx := indexSchool(tree, schoolID)
	if idx < 0 {
		return tree, false
	}
	defaults := tree[idx].Defaults()
	return mapClass(tree, schoolID, classID, func(c domain.Class) domain.Class {
		subjects := make([]domain.Subject, 0, len(c.Subjects)+1)
		subjects = append(subjects, c.Subjects...)
		c.Subjects = append(subjects, NewSubjectFromDefaults(ids, defaults))
		return c
	})
}

// RemoveSchool drops the school with the given id.
func RemoveSchool(tree []domain.School, schoolID string) ([]domain.School, bool) {
	idx := indexSchool(tree, schoolID)
	if idx < 0 {
		return tree, false
	}
	return without(tree, idx), true
}

// RemoveClass drops a class from its school.
func RemoveClass(tree []domain.School, schoolID, classID string) ([]domain.School, bool) {
	removed := false
	out, ok := mapSchool(tree, schoolID, func(s domain.School) domain.School {
		if idx := indexClass(s.Classes, classID); idx >= 0 {
			s.Classes = without(s.Classes, idx)
			removed = true
		}
		return s
	})
	if !ok || !removed {
		return tree, false
	}
	return out, true
}

// RemoveSubject drops a subject from its class.
func RemoveSubject(tree []domain.School, schoolID, classID, subjectID string) ([]domain.School, bool) {
	removed := false
	out, ok := mapClass(tree, schoolID, classID, func(c domain.Class) domain.Class {
		if idx := indexSubject(c.Subjects, subjectID); idx >= 0 {
			c.Subjects = without(c.Subjects, idx)
			removed = true
		}
		return c
	})
	if !ok || !removed {
		return tree, false
	}
	return out, true
}

// FindSchool returns the school with the given id.
func FindSchool(tree []domain.School, schoolID string) (domain.School, bool) {
	idx := indexSchool(tree, schoolID)
	if idx < 0 {
		return domain.School{}, false
	}
	return tree[idx], true
}

// FindClass returns the school and class addressed by the two ids.
func FindClass(tree []domain.School, schoolID, classID string) (domain.School, domain.Class, bool) {
	school, ok := FindSchool(tree, schoolID)
	if !ok {
		return domain.School{}, domain.Class{}, false
	}
	idx := indexClass(school.Classes, classID)
	if idx < 0 {
		return domain.School{}, domain.Class{}, false
	}
	return school, school.Classes[idx], true
}

// FindSubject returns the subject addressed by the three ids.
func FindSubject(tree []domain.School, schoolID, classID, subjectID string) (domain.Subject, bool) {
	_, class, ok := FindClass(tree, schoolID, classID)
	if !ok {
		return domain.Subject{}, false
	}
	idx := indexSubject(class.Subjects, subjectID)
	if idx < 0 {
		return domain.Subject{}, false
	}
	return class.Subjects[idx], true
}

func mapSchool(tree []domain.School, schoolID string, fn func(domain.School) domain.School) ([]domain.School, bool) {
	idx := indexSchool(tree, schoolID)
	if idx < 0 {
		return tree, false
	}
	out := make([]domain.School, len(tree))
	copy(out, tree)
	out[idx] = fn(out[idx])
	return out, true
}

func mapClass(tree []domain.School, schoolID, classID string, fn func(domain.Class) domain.Class) ([]domain.School, bool) {
	sidx := indexSchool(tree, schoolID)
	if sidx < 0 {
		return tree, false
	}
	cidx := indexClass(tree[sidx].Classes, classID)
	if cidx < 0 {
		return tree, false
	}
	return mapSchool(tree, schoolID, func(s domain.School) domain.School {
		classes := make([]domain.Class, len(s.Classes))
		copy(classes, s.Classes)
		classes[cidx] = fn(classes[cidx])
		s.Classes = classes
		return s
	})
}

func mapSubject(tree []domain.School, schoolID, classID, subjectID string, fn func(domain.Subject) domain.Subject) ([]domain.School, bool) {
	if _, ok := FindSubject(tree, schoolID, classID, subjectID); !ok {
		return tree, false
	}
	return mapClass(tree, schoolID, classID, func(c domain.Class) domain.Class {
		subjects := make([]domain.Subject, len(c.Subjects))
		copy(subjects, c.Subjects)
		idx := indexSubject(subjects, subjectID)
		subjects[idx] = fn(subjects[idx])
		c.Subjects = subjects
		return c
	})
}

func indexSchool(tree []domain.School, id string) int {
	for i := range tree {
		if tree[i].ID == id {
			return i
		}
	}
	return -1
}

func indexClass(classes []domain.Class, id string) int {
	for i := range classes {
		if classes[i].ID == id {
			return i
		}
	}
	return -1
}

func indexSubject(subjects []domain.Subject, id string) int {
	for i := range subjects {
		if subjects[i].ID == id {
			return i
		}
	}
	return -1
}

func without[T any](items []T, idx int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
