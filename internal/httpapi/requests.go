package httpapi

import (
	"bytes"
	"encoding/json"

	"bookdist/internal/records"
)

// count accepts a JSON number or string and reads it leniently, the way a
// number input field does. Anything unreadable becomes 0.
type count struct {
	raw string
}

func (n *count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.raw = s
		return nil
	}
	n.raw = string(b)
	return nil
}

func (n *count) value() *int {
	if n == nil {
		return nil
	}
	v := records.ParseCount(n.raw)
	return &v
}

type subjectPatchRequest struct {
	Name           *string `json:"name"`
	Students       *count  `json:"students"`
	Distribution   *count  `json:"distribution"`
	BooksPerCarton *count  `json:"booksPerCarton"`
}

func (r subjectPatchRequest) patch() records.SubjectPatch {
	return records.SubjectPatch{
		Name:           r.Name,
		Students:       r.Students.value(),
		Distribution:   r.Distribution.value(),
		BooksPerCarton: r.BooksPerCarton.value(),
	}
}

type defaultValueRequest struct {
	Value count `json:"value"`
}

type exportRequest struct {
	SnapshotID string   `json:"snapshotId"`
	Formats    []string `json:"formats"`
}
