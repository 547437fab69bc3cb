package core

import (
	"fmt"

	"bookdist/internal/calc"
	"bookdist/internal/records"
)

// ClassResult calculates every subject of a class for the result views.
func (s *Service) ClassResult(schoolID, classID string) (calc.ClassReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	school, class, ok := records.FindClass(s.schools, schoolID, classID)
	if !ok {
		return calc.ClassReport{}, fmt.Errorf("class %s: %w", classID, ErrNotFound)
	}
	return calc.ReportClass(school, class), nil
}
