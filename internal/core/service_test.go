package core

import (
	"context"
	"errors"
	"testing"

	"bookdist/internal/calc"
	"bookdist/internal/confirm"
	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

func TestNewServiceStartsWithOneSchool(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.State()
	if len(view.Schools) != 1 || len(view.Schools[0].Classes) != 1 || len(view.Schools[0].Classes[0].Subjects) != 1 {
		t.Fatalf("expected a single fresh school, got %+v", view.Schools)
	}
	if view.LogCount != 0 || len(view.Log) != 0 {
		t.Fatalf("expected empty log, got %d", view.LogCount)
	}
	if view.Settings != domain.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", view.Settings)
	}
	if view.Pending.IsOpen {
		t.Fatalf("expected idle gate")
	}
}

func TestAddOperationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	schoolID, classID, _ := firstPath(t, svc)

	school, err := svc.AddSchool(ctx)
	if err != nil || school.ID == "" || len(school.Classes) != 1 {
		t.Fatalf("add school: %v %+v", err, school)
	}
	class, ok, err := svc.AddClass(ctx, schoolID)
	if err != nil || !ok || class.Name != domain.ClassLabel(2) {
		t.Fatalf("add class: %v %v %+v", ok, err, class)
	}
	subject, ok, err := svc.AddSubject(ctx, schoolID, classID)
	if err != nil || !ok || subject.Distribution != domain.DefaultDistribution {
		t.Fatalf("add subject: %v %v %+v", ok, err, subject)
	}
	last, ok, err := svc.AddClassToLastSchool(ctx)
	if err != nil || !ok || last.ID == "" {
		t.Fatalf("add class to last school: %v %v", ok, err)
	}

	reloaded := NewService(ctx, store)
	tree := reloaded.Schools()
	if len(tree) != 2 {
		t.Fatalf("expected 2 persisted schools, got %d", len(tree))
	}
	if len(tree[0].Classes) != 2 || len(tree[0].Classes[0].Subjects) != 2 {
		t.Fatalf("unexpected persisted first school %+v", tree[0])
	}
	if len(tree[1].Classes) != 2 || tree[1].Classes[1].ID != last.ID {
		t.Fatalf("expected class appended to last school, got %+v", tree[1])
	}
}

func TestStaleIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	before := svc.Schools()

	if _, ok, err := svc.AddClass(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected add class no-op, got %v %v", ok, err)
	}
	if _, ok, err := svc.AddSubject(ctx, "missing", "missing"); ok || err != nil {
		t.Fatalf("expected add subject no-op, got %v %v", ok, err)
	}
	if ok, err := svc.UpdateSchool(ctx, "missing", records.SchoolPatch{Name: strPtr("x")}); ok || err != nil {
		t.Fatalf("expected update school no-op, got %v %v", ok, err)
	}
	if ok, err := svc.UpdateSubject(ctx, "a", "b", "c", records.SubjectPatch{Students: intPtr(3)}); ok || err != nil {
		t.Fatalf("expected update subject no-op, got %v %v", ok, err)
	}
	if ok, err := svc.SetDefaultSubjectValue(ctx, "missing", records.FieldStudents, "5"); ok || err != nil {
		t.Fatalf("expected default value no-op, got %v %v", ok, err)
	}
	if after := svc.Schools(); after[0].ID != before[0].ID || len(after) != len(before) {
		t.Fatalf("tree changed by stale ids")
	}
	if _, saved := store.ExportState()[domain.BucketSchools]; saved {
		t.Fatalf("no-op operations must not write")
	}
}

func TestUpdateOperations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, subjectID := firstPath(t, svc)

	if ok, err := svc.UpdateSchool(ctx, schoolID, records.SchoolPatch{Name: strPtr("مدرسة النور")}); !ok || err != nil {
		t.Fatalf("update school: %v %v", ok, err)
	}
	if ok, err := svc.UpdateClass(ctx, schoolID, classID, records.ClassPatch{Name: strPtr(domain.ClassLabel(4))}); !ok || err != nil {
		t.Fatalf("update class: %v %v", ok, err)
	}
	patch := records.SubjectPatch{Name: strPtr("رياضيات"), Students: intPtr(30), BooksPerCarton: intPtr(12)}
	if ok, err := svc.UpdateSubject(ctx, schoolID, classID, subjectID, patch); !ok || err != nil {
		t.Fatalf("update subject: %v %v", ok, err)
	}
	tree := svc.Schools()
	subject := tree[0].Classes[0].Subjects[0]
	if tree[0].Name != "مدرسة النور" || tree[0].Classes[0].Name != domain.ClassLabel(4) {
		t.Fatalf("unexpected names %+v", tree[0])
	}
	if subject.Name != "رياضيات" || subject.Students != 30 || subject.BooksPerCarton != 12 || subject.Distribution != 100 {
		t.Fatalf("unexpected subject %+v", subject)
	}
}

func TestSetDefaultSubjectValue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, _ := firstPath(t, svc)

	if ok, err := svc.SetDefaultSubjectValue(ctx, schoolID, records.FieldStudents, "40 طالب"); !ok || err != nil {
		t.Fatalf("set students: %v %v", ok, err)
	}
	if ok, err := svc.SetDefaultSubjectValue(ctx, schoolID, records.FieldBooksPerCarton, "abc"); !ok || err != nil {
		t.Fatalf("set books per carton: %v %v", ok, err)
	}
	if _, err := svc.SetDefaultSubjectValue(ctx, schoolID, "color", "1"); !errors.Is(err, records.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	subject, _, err := svc.AddSubject(ctx, schoolID, classID)
	if err != nil {
		t.Fatalf("add subject: %v", err)
	}
	if subject.Students != 40 || subject.BooksPerCarton != 0 || subject.Distribution != 100 {
		t.Fatalf("expected subject from defaults, got %+v", subject)
	}
	if first := svc.Schools()[0].Classes[0].Subjects[0]; first.Students != 0 {
		t.Fatalf("existing subjects must keep their values, got %+v", first)
	}
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	if _, err := svc.AddSchool(ctx); err != nil {
		t.Fatalf("add school: %v", err)
	}
	schoolID, _, _ := firstPath(t, svc)

	if err := svc.RequestRemoveSchool(ctx, schoolID); err != nil {
		t.Fatalf("request: %v", err)
	}
	pending := svc.PendingConfirmation()
	if !pending.IsOpen || pending.Message != confirmRemoveSchool {
		t.Fatalf("expected open gate with school message, got %+v", pending)
	}
	if len(svc.Schools()) != 2 {
		t.Fatalf("request must not remove anything")
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if svc.PendingConfirmation().IsOpen {
		t.Fatalf("gate should close after confirm")
	}
	tree := NewService(ctx, store).Schools()
	if len(tree) != 1 || tree[0].ID == schoolID {
		t.Fatalf("expected school removed and persisted, got %+v", tree)
	}
}

func TestRemoveRefusesLastSibling(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, subjectID := firstPath(t, svc)

	if err := svc.RequestRemoveSchool(ctx, schoolID); !errors.Is(err, ErrLastSibling) {
		t.Fatalf("expected ErrLastSibling for school, got %v", err)
	}
	if err := svc.RequestRemoveClass(ctx, schoolID, classID); !errors.Is(err, ErrLastSibling) {
		t.Fatalf("expected ErrLastSibling for class, got %v", err)
	}
	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, subjectID); !errors.Is(err, ErrLastSibling) {
		t.Fatalf("expected ErrLastSibling for subject, got %v", err)
	}
	if svc.PendingConfirmation().IsOpen {
		t.Fatalf("refused requests must not open the gate")
	}
	if err := svc.RequestRemoveClass(ctx, schoolID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveClassAndSubject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, subjectID := firstPath(t, svc)
	class, _, _ := svc.AddClass(ctx, schoolID)
	if _, _, err := svc.AddSubject(ctx, schoolID, classID); err != nil {
		t.Fatalf("add subject: %v", err)
	}

	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, subjectID); err != nil {
		t.Fatalf("request subject: %v", err)
	}
	if msg := svc.PendingConfirmation().Message; msg != confirmRemoveSubject {
		t.Fatalf("unexpected message %q", msg)
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm subject: %v", err)
	}
	if err := svc.RequestRemoveClass(ctx, schoolID, class.ID); err != nil {
		t.Fatalf("request class: %v", err)
	}
	if msg := svc.PendingConfirmation().Message; msg != confirmRemoveClass {
		t.Fatalf("unexpected message %q", msg)
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm class: %v", err)
	}
	school := svc.Schools()[0]
	if len(school.Classes) != 1 || len(school.Classes[0].Subjects) != 1 || school.Classes[0].Subjects[0].ID == subjectID {
		t.Fatalf("unexpected tree after removals %+v", school)
	}
}

func TestGateLastRequestWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, first := firstPath(t, svc)
	second, _, _ := svc.AddSubject(ctx, schoolID, classID)
	third, _, _ := svc.AddSubject(ctx, schoolID, classID)

	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, first); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, second.ID); err != nil {
		t.Fatalf("second request: %v", err)
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	subjects := svc.Schools()[0].Classes[0].Subjects
	if len(subjects) != 2 || subjects[0].ID != first || subjects[1].ID != third.ID {
		t.Fatalf("expected only the second subject removed, got %+v", subjects)
	}
}

func TestCancelAndIdleConfirm(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.AddSchool(ctx); err != nil {
		t.Fatalf("add school: %v", err)
	}
	schoolID, _, _ := firstPath(t, svc)
	if err := svc.RequestRemoveSchool(ctx, schoolID); err != nil {
		t.Fatalf("request: %v", err)
	}
	svc.Cancel(ctx)
	if svc.PendingConfirmation().IsOpen {
		t.Fatalf("cancel should close the gate")
	}
	if len(svc.Schools()) != 2 {
		t.Fatalf("cancel must not remove anything")
	}
	if err := svc.Confirm(ctx); !errors.Is(err, confirm.ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}
}

func TestConfirmRechecksSiblingCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, first := firstPath(t, svc)
	second, _, _ := svc.AddSubject(ctx, schoolID, classID)

	if err := svc.RequestRemoveSubject(ctx, schoolID, classID, first); err != nil {
		t.Fatalf("request: %v", err)
	}
	svc.mu.Lock()
	svc.schools, _ = records.RemoveSubject(svc.schools, schoolID, classID, second.ID)
	svc.mu.Unlock()

	if err := svc.Confirm(ctx); !errors.Is(err, ErrLastSibling) {
		t.Fatalf("expected ErrLastSibling at confirm time, got %v", err)
	}
	subjects := svc.Schools()[0].Classes[0].Subjects
	if len(subjects) != 1 || subjects[0].ID != first {
		t.Fatalf("last subject must survive, got %+v", subjects)
	}
}

func TestArchiveSnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	schoolID, classID, subjectID := firstPath(t, svc)
	_, _ = svc.UpdateSubject(ctx, schoolID, classID, subjectID, records.SubjectPatch{Name: strPtr("علوم")})

	entry, err := svc.Archive(ctx)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if entry.ID == "" || !entry.Date.Equal(fixedNow) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	_, _ = svc.UpdateSubject(ctx, schoolID, classID, subjectID, records.SubjectPatch{Name: strPtr("تاريخ")})

	got, err := svc.LogEntry(entry.ID)
	if err != nil {
		t.Fatalf("log entry: %v", err)
	}
	if name := got.Data[0].Classes[0].Subjects[0].Name; name != "علوم" {
		t.Fatalf("snapshot changed with live tree: %q", name)
	}
	second, _ := svc.Archive(ctx)
	log := NewService(ctx, store).Log()
	if len(log) != 2 || log[0].ID != second.ID || log[1].ID != entry.ID {
		t.Fatalf("expected newest-first persisted log, got %+v", log)
	}
	if _, err := svc.LogEntry("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAndClearLog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	first, _ := svc.Archive(ctx)
	second, _ := svc.Archive(ctx)

	if err := svc.RequestDeleteLogEntry(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.RequestDeleteLogEntry(ctx, first.ID); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if msg := svc.PendingConfirmation().Message; msg != confirmDeleteLogEntry {
		t.Fatalf("unexpected message %q", msg)
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}
	if log := svc.Log(); len(log) != 1 || log[0].ID != second.ID {
		t.Fatalf("unexpected log after delete %+v", log)
	}
	if err := svc.RequestClearLog(ctx); err != nil {
		t.Fatalf("request clear: %v", err)
	}
	if msg := svc.PendingConfirmation().Message; msg != confirmClearLog {
		t.Fatalf("unexpected message %q", msg)
	}
	if err := svc.Confirm(ctx); err != nil {
		t.Fatalf("confirm clear: %v", err)
	}
	if view := svc.State(); view.LogCount != 0 || len(view.Log) != 0 {
		t.Fatalf("expected empty log, got %d", view.LogCount)
	}
	if len(svc.Schools()) != 1 {
		t.Fatalf("clearing the log must not touch the tree")
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	want := domain.Settings{Theme: domain.ThemeDark, FontSize: domain.FontLarge}
	got, err := svc.UpdateSettings(ctx, want)
	if err != nil || got != want {
		t.Fatalf("update settings: %v %+v", err, got)
	}
	if _, err := svc.UpdateSettings(ctx, domain.Settings{Theme: "neon", FontSize: domain.FontLarge}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if svc.Settings() != want {
		t.Fatalf("invalid settings must not replace current ones")
	}
	if reloaded := NewService(ctx, store).Settings(); reloaded != want {
		t.Fatalf("expected persisted settings, got %+v", reloaded)
	}
}

func TestClassResult(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	schoolID, classID, subjectID := firstPath(t, svc)
	_, _ = svc.UpdateSubject(ctx, schoolID, classID, subjectID, records.SubjectPatch{Students: intPtr(25), BooksPerCarton: intPtr(10)})
	_, _, _ = svc.AddSubject(ctx, schoolID, classID)

	report, err := svc.ClassResult(schoolID, classID)
	if err != nil {
		t.Fatalf("class result: %v", err)
	}
	if len(report.Subjects) != 2 {
		t.Fatalf("expected two subjects, got %d", len(report.Subjects))
	}
	res := report.Subjects[0].Result
	if res == nil || res.Kind != calc.Add || res.FullCartons != 2 || res.Remainder != 5 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !report.Subjects[1].Incomplete || report.Subjects[1].Result != nil {
		t.Fatalf("expected blank subject marked incomplete")
	}
	if _, err := svc.ClassResult(schoolID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ctx, failingSaveStore{err: errDiskFull}, WithIDGenerator(sequentialIDs()))
	if _, err := svc.AddSchool(ctx); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected save error, got %v", err)
	}
	if len(svc.Schools()) != 2 {
		t.Fatalf("in-memory change should be kept after a failed save")
	}
}
