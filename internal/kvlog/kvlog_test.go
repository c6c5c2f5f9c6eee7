package kvlog

import "testing"

type recordingLogger struct {
	warns, errors []string
}

func (r *recordingLogger) Warnf(format string, args ...any)  { r.warns = append(r.warns, format) }
func (r *recordingLogger) Errorf(format string, args ...any) { r.errors = append(r.errors, format) }

func TestCustomLoggerReceivesCalls(t *testing.T) {
	old := Default
	defer func() { Default = old }()

	rec := &recordingLogger{}
	Default = rec

	Warnf("row removed: %s", "k1")
	Errorf("backend failed: %s", "timeout")

	if len(rec.warns) != 1 || len(rec.errors) != 1 {
		t.Fatalf("warns=%v errors=%v", rec.warns, rec.errors)
	}
}
