package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

// fakeCompressor mimics 7za's observable behavior: relative paths resolve
// against workDir (its cwd), and it either writes the archive at destPath
// and succeeds or fails without producing output.
type fakeCompressor struct {
	fail  bool
	calls int
}

func (f *fakeCompressor) Compress(_ context.Context, workDir, inputPath, destPath string) error {
	f.calls++
	if f.fail {
		return errors.New("exit status 2: simulated compressor failure")
	}
	if !filepath.IsAbs(inputPath) {
		inputPath = filepath.Join(workDir, inputPath)
	}
	if !filepath.IsAbs(destPath) {
		destPath = filepath.Join(workDir, destPath)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input path not under work dir: %w", err)
	}
	return os.WriteFile(destPath, []byte("7z:"+inputPath), 0o644)
}

func recordName(day time.Time, unique string) string {
	return fmt.Sprintf("ai-call-%s-100000-openai-gpt4-%s.txt", day.Format("20060102"), unique)
}

func seedFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("record body"), 0o644); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Fatalf("expected %s to be gone", path)
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func TestSweepLeavesTodayRelocatesOlder(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	d2 := testNow.AddDate(0, 0, -2)

	seedFile(t, dir, recordName(testNow, "aa"))
	seedFile(t, dir, recordName(d1, "bb"))
	seedFile(t, dir, recordName(d1, "cc"))
	seedFile(t, dir, recordName(d2, "dd"))

	// Failing compressor keeps phase 1's output inspectable.
	a := New(&fakeCompressor{fail: true}, nil)
	run := a.Run(dir, testNow)

	if run.SweptFiles != 3 {
		t.Fatalf("expected 3 swept files, got %d", run.SweptFiles)
	}
	mustExist(t, filepath.Join(dir, recordName(testNow, "aa")))
	mustExist(t, filepath.Join(dir, d1.Format("2006-01-02"), recordName(d1, "bb")))
	mustExist(t, filepath.Join(dir, d1.Format("2006-01-02"), recordName(d1, "cc")))
	mustExist(t, filepath.Join(dir, d2.Format("2006-01-02"), recordName(d2, "dd")))
}

func TestCompactionSuccessRemovesBucket(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	seedFile(t, dir, recordName(d1, "bb"))

	a := New(&fakeCompressor{}, nil)
	run := a.Run(dir, testNow)

	if run.ArchivesCreated != 1 || run.Failures != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
	mustNotExist(t, filepath.Join(dir, d1.Format("2006-01-02")))
	mustExist(t, filepath.Join(dir, "ai-calls_"+d1.Format("2006-01-02")+".7z"))
}

func TestCompactionFailureLeavesBucketIntact(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	seedFile(t, dir, recordName(d1, "bb"))

	a := New(&fakeCompressor{fail: true}, nil)
	run := a.Run(dir, testNow)

	if run.Failures == 0 {
		t.Fatalf("expected failure recorded, got %+v", run)
	}
	bucket := filepath.Join(dir, d1.Format("2006-01-02"))
	mustExist(t, filepath.Join(bucket, recordName(d1, "bb")))
	mustNotExist(t, filepath.Join(dir, "ai-calls_"+d1.Format("2006-01-02")+".7z"))

	// no stray temp output either
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			t.Fatalf("unexpected file left in target dir: %s", e.Name())
		}
	}
}

func TestRelativeTargetDirCompactsInPlace(t *testing.T) {
	root := t.TempDir()
	calls := filepath.Join(root, "calls")
	if err := os.MkdirAll(calls, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	d1 := testNow.AddDate(0, 0, -1)
	seedFile(t, calls, recordName(d1, "bb"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})

	a := New(&fakeCompressor{}, nil)
	run := a.Run("calls", testNow)

	if run.ArchivesCreated != 1 || run.Failures != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
	mustNotExist(t, filepath.Join(calls, d1.Format("2006-01-02")))
	mustExist(t, filepath.Join(calls, "ai-calls_"+d1.Format("2006-01-02")+".7z"))
}

func TestRunIdempotent(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	seedFile(t, dir, recordName(d1, "bb"))

	comp := &fakeCompressor{}
	a := New(comp, nil)
	first := a.Run(dir, testNow)
	if first.ArchivesCreated != 1 {
		t.Fatalf("first run: %+v", first)
	}

	second := a.Run(dir, testNow)
	if second.SweptFiles != 0 || second.ArchivesCreated != 0 || second.Failures != 0 {
		t.Fatalf("second run should be a no-op: %+v", second)
	}
	if comp.calls != 1 {
		t.Fatalf("compressor invoked %d times, want 1", comp.calls)
	}
}

func TestArchiveNameCollisionGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	date := d1.Format("2006-01-02")
	seedFile(t, dir, "ai-calls_"+date+".7z") // pre-existing archive
	seedFile(t, dir, recordName(d1, "bb"))

	a := New(&fakeCompressor{}, nil)
	run := a.Run(dir, testNow)

	if run.ArchivesCreated != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	mustExist(t, filepath.Join(dir, "ai-calls_"+date+"_2.7z"))
}

func TestPendingBucketFromEarlierRunIsRetried(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	date := d1.Format("2006-01-02")
	if err := os.MkdirAll(filepath.Join(dir, date), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	seedFile(t, filepath.Join(dir, date), recordName(d1, "bb"))

	a := New(&fakeCompressor{}, nil)
	run := a.Run(dir, testNow)

	if run.BucketsPending != 1 || run.ArchivesCreated != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	mustNotExist(t, filepath.Join(dir, date))
	mustExist(t, filepath.Join(dir, "ai-calls_"+date+".7z"))
}

func TestTodayBucketNeverCompacted(t *testing.T) {
	dir := t.TempDir()
	today := testNow.Format("2006-01-02")
	if err := os.MkdirAll(filepath.Join(dir, today), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	comp := &fakeCompressor{}
	a := New(comp, nil)
	a.Run(dir, testNow)

	if comp.calls != 0 {
		t.Fatal("today's bucket must not be compacted")
	}
	mustExist(t, filepath.Join(dir, today))
}

func TestSweepSkipsHiddenTempPartialAndArchives(t *testing.T) {
	dir := t.TempDir()
	skipped := []string{
		".hidden-config",
		"record.txt.tmp-1724800000-abcd1234",
		"record.txt.partial-20250827120000",
		"ai-calls_2025-08-20.7z",
	}
	for _, name := range skipped {
		seedFile(t, dir, name)
	}

	a := New(&fakeCompressor{}, nil)
	run := a.Run(dir, testNow)

	if run.SweptFiles != 0 {
		t.Fatalf("expected nothing swept, got %+v", run)
	}
	for _, name := range skipped {
		mustExist(t, filepath.Join(dir, name))
	}
}

func TestLegacyNameAndModTimeClassification(t *testing.T) {
	dir := t.TempDir()
	d2 := testNow.AddDate(0, 0, -2)
	legacy := "ai_call_" + d2.Format("2006-01-02") + "_note.txt"
	seedFile(t, dir, legacy)

	plain := "unrelated-notes.txt"
	seedFile(t, dir, plain)
	old := testNow.Add(-72 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, plain), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	a := New(&fakeCompressor{fail: true}, nil)
	run := a.Run(dir, testNow)
	if run.SweptFiles != 2 {
		t.Fatalf("expected 2 swept, got %+v", run)
	}

	mustExist(t, filepath.Join(dir, d2.Format("2006-01-02"), legacy))
	modDay := old.UTC().Truncate(24 * time.Hour).Format("2006-01-02")
	mustExist(t, filepath.Join(dir, modDay, plain))
}

func TestMoveCollisionAppendsNumericSuffix(t *testing.T) {
	dir := t.TempDir()
	d1 := testNow.AddDate(0, 0, -1)
	date := d1.Format("2006-01-02")
	name := recordName(d1, "bb")

	if err := os.MkdirAll(filepath.Join(dir, date), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	seedFile(t, filepath.Join(dir, date), name) // occupies the plain name
	seedFile(t, dir, name)                      // loose duplicate to relocate

	a := New(&fakeCompressor{fail: true}, nil)
	a.Run(dir, testNow)

	want := "ai-call-" + d1.Format("20060102") + "-100000-openai-gpt4-bb_2.txt"
	mustExist(t, filepath.Join(dir, date, want))
}

func TestMissingTargetDirIsNotAnError(t *testing.T) {
	a := New(&fakeCompressor{}, nil)
	run := a.Run(filepath.Join(t.TempDir(), "does-not-exist"), testNow)
	if run.Failures != 0 || run.SweptFiles != 0 {
		t.Fatalf("missing dir should be a clean no-op: %+v", run)
	}
}

func TestResolveDateKeySources(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name   string
		source string
	}{
		{recordName(testNow.AddDate(0, 0, -1), "xx"), "modern-name"},
		{"ai_call_2025-08-20_old.txt", "legacy-name"},
		{"report.txt", "mod-time"},
	}
	for _, tc := range cases {
		seedFile(t, dir, tc.name)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	got := map[string]string{}
	for _, e := range entries {
		got[e.Name()] = resolveDateKey(e, testNow).Source.String()
	}
	for _, tc := range cases {
		if got[tc.name] != tc.source {
			t.Fatalf("%s classified as %s, want %s", tc.name, got[tc.name], tc.source)
		}
	}
}
