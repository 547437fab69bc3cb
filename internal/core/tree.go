package core

import (
	"context"
	"fmt"

	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

// Confirmation prompts shown before destructive operations.
const (
	confirmRemoveSchool  = "هل أنت متأكد من حذف هذه المدرسة وكل ما فيها من بيانات؟ لا يمكن التراجع عن هذا الإجراء."
	confirmRemoveClass   = "هل أنت متأكد من حذف هذا الصف وكل مواده؟ لا يمكن التراجع عن هذا الإجراء."
	confirmRemoveSubject = "هل أنت متأكد من حذف هذه المادة؟"
)

// AddSchool appends a fresh school with one class and one subject.
func (s *Service) AddSchool(ctx context.Context) (domain.School, error) {
	var created domain.School
	err := s.run(ctx, "add_school", func(ctx context.Context) error {
		tree := records.AddSchool(s.schools, s.ids)
		created = domain.CloneSchool(tree[len(tree)-1])
		return s.commitSchools(ctx, tree)
	})
	return created, err
}

// AddClass appends a class to the school. An unknown school is a no-op and
// reports false.
func (s *Service) AddClass(ctx context.Context, schoolID string) (domain.Class, bool, error) {
	var created domain.Class
	var changed bool
	err := s.run(ctx, "add_class", func(ctx context.Context) error {
		tree, ok := records.AddClass(s.schools, schoolID, s.ids)
		if !ok {
			return nil
		}
		changed = true
		created = lastClass(tree, schoolID)
		return s.commitSchools(ctx, tree)
	})
	return created, changed, err
}

// AddClassToLastSchool appends a class to the last school in the list.
func (s *Service) AddClassToLastSchool(ctx context.Context) (domain.Class, bool, error) {
	var created domain.Class
	var changed bool
	err := s.run(ctx, "add_class_to_last_school", func(ctx context.Context) error {
		tree, ok := records.AddClassToLastSchool(s.schools, s.ids)
		if !ok {
			return nil
		}
		changed = true
		created = lastClass(tree, tree[len(tree)-1].ID)
		return s.commitSchools(ctx, tree)
	})
	return created, changed, err
}

// AddSubject appends a subject pre-filled from the school's defaults.
func (s *Service) AddSubject(ctx context.Context, schoolID, classID string) (domain.Subject, bool, error) {
	var created domain.Subject
	var changed bool
	err := s.run(ctx, "add_subject", func(ctx context.Context) error {
		tree, ok := records.AddSubject(s.schools, schoolID, classID, s.ids)
		if !ok {
			return nil
		}
		changed = true
		if _, class, found := records.FindClass(tree, schoolID, classID); found {
			created = class.Subjects[len(class.Subjects)-1]
		}
		return s.commitSchools(ctx, tree)
	})
	return created, changed, err
}

// UpdateSchool applies patch to a school. Unknown ids are ignored.
func (s *Service) UpdateSchool(ctx context.Context, schoolID string, patch records.SchoolPatch) (bool, error) {
	var changed bool
	err := s.run(ctx, "update_school", func(ctx context.Context) error {
		tree, ok := records.UpdateSchool(s.schools, schoolID, patch)
		if !ok {
			return nil
		}
		changed = true
		return s.commitSchools(ctx, tree)
	})
	return changed, err
}

// UpdateClass applies patch to a class. Unknown ids are ignored.
func (s *Service) UpdateClass(ctx context.Context, schoolID, classID string, patch records.ClassPatch) (bool, error) {
	var changed bool
	err := s.run(ctx, "update_class", func(ctx context.Context) error {
		tree, ok := records.UpdateClass(s.schools, schoolID, classID, patch)
		if !ok {
			return nil
		}
		changed = true
		return s.commitSchools(ctx, tree)
	})
	return changed, err
}

// UpdateSubject applies patch to a subject. Unknown ids are ignored.
func (s *Service) UpdateSubject(ctx context.Context, schoolID, classID, subjectID string, patch records.SubjectPatch) (bool, error) {
	var changed bool
	err := s.run(ctx, "update_subject", func(ctx context.Context) error {
		tree, ok := records.UpdateSubject(s.schools, schoolID, classID, subjectID, patch)
		if !ok {
			return nil
		}
		changed = true
		return s.commitSchools(ctx, tree)
	})
	return changed, err
}

// SetDefaultSubjectValue stores one of the school's subject defaults from
// raw user input. Non-numeric input is stored as 0.
func (s *Service) SetDefaultSubjectValue(ctx context.Context, schoolID, field, raw string) (bool, error) {
	var changed bool
	err := s.run(ctx, "set_default_subject_value", func(ctx context.Context) error {
		tree, ok, err := records.SetDefaultSubjectValue(s.schools, schoolID, field, raw)
		if err != nil || !ok {
			return err
		}
		changed = true
		return s.commitSchools(ctx, tree)
	})
	return changed, err
}

// RequestRemoveSchool asks for confirmation before removing a school. The
// only remaining school cannot be removed.
func (s *Service) RequestRemoveSchool(ctx context.Context, schoolID string) error {
	return s.run(ctx, "request_remove_school", func(context.Context) error {
		if _, ok := records.FindSchool(s.schools, schoolID); !ok {
			return fmt.Errorf("school %s: %w", schoolID, ErrNotFound)
		}
		if len(s.schools) <= 1 {
			return ErrLastSibling
		}
		s.gate.Request(confirmRemoveSchool, func(ctx context.Context) error {
			if len(s.schools) <= 1 {
				return ErrLastSibling
			}
			tree, ok := records.RemoveSchool(s.schools, schoolID)
			if !ok {
				return nil
			}
			return s.commitSchools(ctx, tree)
		})
		return nil
	})
}

// RequestRemoveClass asks for confirmation before removing a class. A
// school's only class cannot be removed.
func (s *Service) RequestRemoveClass(ctx context.Context, schoolID, classID string) error {
	return s.run(ctx, "request_remove_class", func(context.Context) error {
		school, _, ok := records.FindClass(s.schools, schoolID, classID)
		if !ok {
			return fmt.Errorf("class %s: %w", classID, ErrNotFound)
		}
		if len(school.Classes) <= 1 {
			return ErrLastSibling
		}
		s.gate.Request(confirmRemoveClass, func(ctx context.Context) error {
			if school, ok := records.FindSchool(s.schools, schoolID); ok && len(school.Classes) <= 1 {
				return ErrLastSibling
			}
			tree, ok := records.RemoveClass(s.schools, schoolID, classID)
			if !ok {
				return nil
			}
			return s.commitSchools(ctx, tree)
		})
		return nil
	})
}

// RequestRemoveSubject asks for confirmation before removing a subject. A
// class's only subject cannot be removed.
func (s *Service) RequestRemoveSubject(ctx context.Context, schoolID, classID, subjectID string) error {
	return s.run(ctx, "request_remove_subject", func(context.Context) error {
		_, class, ok := records.FindClass(s.schools, schoolID, classID)
		if !ok {
			return fmt.Errorf("class %s: %w", classID, ErrNotFound)
		}
		if _, ok := records.FindSubject(s.schools, schoolID, classID, subjectID); !ok {
			return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
		if len(class.Subjects) <= 1 {
			return ErrLastSibling
		}
		s.gate.Request(confirmRemoveSubject, func(ctx context.Context) error {
			if _, class, ok := records.FindClass(s.schools, schoolID, classID); ok && len(class.Subjects) <= 1 {
				return ErrLastSibling
			}
			tree, ok := records.RemoveSubject(s.schools, schoolID, classID, subjectID)
			if !ok {
				return nil
			}
			return s.commitSchools(ctx, tree)
		})
		return nil
	})
}

func lastClass(tree []domain.School, schoolID string) domain.Class {
	school, ok := records.FindSchool(tree, schoolID)
	if !ok || len(school.Classes) == 0 {
		return domain.Class{}
	}
	return domain.CloneClass(school.Classes[len(school.Classes)-1])
}
