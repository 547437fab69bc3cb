package domain

// CloneSubjects returns an independent copy of subjects.
func CloneSubjects(in []Subject) []Subject {
	if in == nil {
		return nil
	}
	return append([]Subject(nil), in...)
}

// CloneClass returns a deep copy of c.
func CloneClass(c Class) Class {
	cp := c
	cp.Subjects = CloneSubjects(c.Subjects)
	return cp
}

// CloneSchool returns a deep copy of s, including its classes, subjects and
// defaults.
func CloneSchool(s School) School {
	cp := s
	if s.Classes != nil {
		cp.Classes = make([]Class, len(s.Classes))
		for i, c := range s.Classes {
			cp.Classes[i] = CloneClass(c)
		}
	}
	if s.DefaultSubjectValues != nil {
		d := *s.DefaultSubjectValues
		cp.DefaultSubjectValues = &d
	}
	return cp
}

// CloneSchools returns a structural deep copy of the full record tree. No
// slice or pointer in the result aliases the input.
func CloneSchools(in []School) []School {
	if in == nil {
		return nil
	}
	out := make([]School, len(in))
	for i, s := range in {
		out[i] = CloneSchool(s)
	}
	return out
}

// CloneLogEntry returns a deep copy of e.
func CloneLogEntry(e LogEntry) LogEntry {
	cp := e
	cp.Data = CloneSchools(e.Data)
	return cp
}

// CloneLog returns a deep copy of every entry.
func CloneLog(in []LogEntry) []LogEntry {
	if in == nil {
		return nil
	}
	out := make([]LogEntry, len(in))
	for i, e := range in {
		out[i] = CloneLogEntry(e)
	}
	return out
}
