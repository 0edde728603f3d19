package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rejoin/internal/logging"
	"rejoin/internal/media/ffprobe"
	"rejoin/internal/state"
	"rejoin/internal/testsupport"
)

// fakeConcat copies member contents into output, reading the member list
// back out of the concat file.
type fakeConcat struct {
	lists   []string
	outputs []string
	fail    map[string]error
	empty   bool
}

func (f *fakeConcat) Concat(_ context.Context, listFile, output string) error {
	data, err := os.ReadFile(listFile)
	if err != nil {
		return err
	}
	f.lists = append(f.lists, string(data))
	f.outputs = append(f.outputs, output)
	if f.empty {
		return os.WriteFile(output, nil, 0o644)
	}

	var merged []byte
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		path = strings.ReplaceAll(path, `'\''`, "'")
		if err, ok := f.fail[filepath.Base(path)]; ok {
			_ = os.WriteFile(output, []byte("partial"), 0o644)
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		merged = append(merged, content...)
	}
	return os.WriteFile(output, merged, 0o644)
}

type fakeInspector map[string]ffprobe.Signature

func (p fakeInspector) Signature(_ context.Context, path string) (ffprobe.Signature, error) {
	sig, ok := p[filepath.Base(path)]
	if !ok {
		return ffprobe.Signature{VideoCodec: "mjpeg", Width: 640, Height: 480}, nil
	}
	return sig, nil
}

type fixture struct {
	in, out, scratch string
	concat           *fakeConcat
	orch             *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		in:      filepath.Join(base, "in"),
		out:     filepath.Join(base, "out"),
		scratch: filepath.Join(base, "scratch"),
		concat:  &fakeConcat{fail: map[string]error{}},
	}
	for _, dir := range []string{f.in, f.out, f.scratch} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	f.orch = NewOrchestrator(f.concat, fakeInspector{}, f.scratch, logging.NewNop())
	return f
}

func (f *fixture) chain(t *testing.T, names ...string) state.Chain {
	t.Helper()
	return state.Chain(testsupport.Recordings(t, f.in, names...))
}

func (f *fixture) options() Options {
	return Options{OutputDir: f.out, VerifyCodecs: true}
}

func assertExists(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	if got := err == nil; got != want {
		t.Fatalf("exists(%s) = %v, want %v (err %v)", path, got, want, err)
	}
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch dir not cleaned: %v", entries)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		chain state.Chain
		want  string
	}{
		{state.Chain{"/in/MOVI0001.AVI", "/in/MOVI0002.AVI"}, "MOVI0001_MOVI0002.AVI"},
		{state.Chain{"/in/a.mp4", "/in/b.MP4", "/in/c.mp4"}, "a_b_c.mp4"},
		{state.Chain{"/in/noext", "/in/other"}, "noext_other"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := OutputName(tt.chain); got != tt.want {
			t.Fatalf("OutputName(%v) = %q, want %q", tt.chain, got, tt.want)
		}
	}
}

func TestMergeDeletesOriginalsAfterSuccess(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "MOVI0001.AVI", "MOVI0002.AVI")
	opts := f.options()
	opts.DeleteOriginals = true

	report, err := f.orch.Merge(context.Background(), []state.Chain{chain}, opts)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	output := filepath.Join(f.out, "MOVI0001_MOVI0002.AVI")
	if len(report.Results) != 1 || report.Results[0].Status != StatusMerged || report.Results[0].Output != output {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Results[0].Bytes != 2048 || report.Results[0].Deleted != 2 {
		t.Fatalf("unexpected result %+v", report.Results[0])
	}
	assertExists(t, output, true)
	assertExists(t, chain[0], false)
	assertExists(t, chain[1], false)
	assertScratchEmpty(t, f.scratch)

	wantList := "file '" + chain[0] + "'\nfile '" + chain[1] + "'\n"
	if f.concat.lists[0] != wantList {
		t.Fatalf("list = %q, want %q", f.concat.lists[0], wantList)
	}
	if filepath.Base(f.concat.outputs[0]) != ".MOVI0001_MOVI0002.partial.AVI" {
		t.Fatalf("concat wrote to %s", f.concat.outputs[0])
	}
}

func TestMergeFailureKeepsOriginalsAndContinues(t *testing.T) {
	f := newFixture(t)
	bad := f.chain(t, "A.AVI", "B.AVI")
	good := f.chain(t, "C.AVI", "D.AVI")
	f.concat.fail["B.AVI"] = errors.New("Invalid data found when processing input")
	opts := f.options()
	opts.DeleteOriginals = true

	report, err := f.orch.Merge(context.Background(), []state.Chain{bad, good}, opts)
	if !errors.Is(err, ErrMergeFailed) {
		t.Fatalf("expected ErrMergeFailed, got %v", err)
	}
	if report.Failed() != 1 || report.Merged() != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	assertExists(t, bad[0], true)
	assertExists(t, bad[1], true)
	assertExists(t, filepath.Join(f.out, "A_B.AVI"), false)
	assertExists(t, filepath.Join(f.out, ".A_B.partial.AVI"), false)
	assertExists(t, good[0], false)
	assertExists(t, filepath.Join(f.out, "C_D.AVI"), true)
	assertScratchEmpty(t, f.scratch)
}

func TestMergeIncompatibleMembers(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "A.AVI", "B.AVI")
	f.orch.Inspector = fakeInspector{"B.AVI": {VideoCodec: "mjpeg", Width: 1280, Height: 720}}

	_, err := f.orch.Merge(context.Background(), []state.Chain{chain}, f.options())
	if !errors.Is(err, ErrIncompatible) {
		t.Fatalf("expected ErrIncompatible, got %v", err)
	}
	if !strings.Contains(err.Error(), "resolution 640x480 vs 1280x720") {
		t.Fatalf("missing mismatch detail: %v", err)
	}
	if len(f.concat.lists) != 0 {
		t.Fatal("concat ran for incompatible chain")
	}

	opts := f.options()
	opts.VerifyCodecs = false
	if _, err := f.orch.Merge(context.Background(), []state.Chain{chain}, opts); err != nil {
		t.Fatalf("merge without verification: %v", err)
	}
}

func TestMergeInsufficientSpace(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "A.AVI", "B.AVI")
	f.orch.freeBytes = func(string) (uint64, error) { return 100, nil }

	_, err := f.orch.Merge(context.Background(), []state.Chain{chain}, f.options())
	if !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace, got %v", err)
	}
	assertExists(t, chain[0], true)
}

func TestMergeSkipsExistingOutput(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "A.AVI", "B.AVI")
	output := filepath.Join(f.out, "A_B.AVI")
	testsupport.WriteFile(t, output, 10)

	report, err := f.orch.Merge(context.Background(), []state.Chain{chain}, f.options())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Skipped() != 1 || len(f.concat.lists) != 0 {
		t.Fatalf("expected skip, got %+v", report)
	}

	opts := f.options()
	opts.Overwrite = true
	report, err = f.orch.Merge(context.Background(), []state.Chain{chain}, opts)
	if err != nil {
		t.Fatalf("Merge overwrite: %v", err)
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatal(err)
	}
	if report.Merged() != 1 || info.Size() != 2048 {
		t.Fatalf("expected overwritten output, got %+v size %d", report, info.Size())
	}
}

func TestMergeMissingMemberAndShortChain(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "A.AVI", "B.AVI")
	if err := os.Remove(chain[1]); err != nil {
		t.Fatal(err)
	}
	short := f.chain(t, "C.AVI")

	report, err := f.orch.Merge(context.Background(), []state.Chain{chain, short}, f.options())
	if err == nil || report.Failed() != 2 {
		t.Fatalf("expected two failures, got %+v (%v)", report, err)
	}
	assertExists(t, chain[0], true)
}

func TestMergeEmptyOutputFails(t *testing.T) {
	f := newFixture(t)
	chain := f.chain(t, "A.AVI", "B.AVI")
	f.concat.empty = true
	opts := f.options()
	opts.DeleteOriginals = true

	_, err := f.orch.Merge(context.Background(), []state.Chain{chain}, opts)
	if !errors.Is(err, ErrMergeFailed) {
		t.Fatalf("expected ErrMergeFailed, got %v", err)
	}
	assertExists(t, chain[0], true)
	assertExists(t, filepath.Join(f.out, "A_B.AVI"), false)
}

func TestMergeRequiresOutputDir(t *testing.T) {
	f := newFixture(t)
	if _, err := f.orch.Merge(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error without output dir")
	}
}

func TestWriteListEscapesQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := WriteList(path, []string{"/in/it's.AVI", "/in/plain.AVI"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "file '/in/it'\\''s.AVI'\nfile '/in/plain.AVI'\n"
	if string(data) != want {
		t.Fatalf("list = %q, want %q", data, want)
	}
}

func TestFFmpegConcat(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	stub := testsupport.WriteStub(t, dir, "ffmpeg",
		"printf '%s\\n' \"$@\" > "+argsFile+"\n"+
			"for last; do :; done\n"+
			"printf 'merged' > \"$last\"\n")

	list := filepath.Join(dir, "list.txt")
	output := filepath.Join(dir, "out.AVI")
	if err := NewFFmpegConcat(stub).Concat(context.Background(), list, output); err != nil {
		t.Fatalf("Concat: %v", err)
	}
	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join(concatArgs(list, output), "\n") + "\n"
	if string(args) != want {
		t.Fatalf("args = %q, want %q", args, want)
	}
	for _, flag := range []string{"-f\nconcat", "-safe\n0", "-c\ncopy", "-v\nerror", "-y"} {
		if !strings.Contains(string(args), flag) {
			t.Fatalf("missing %q in %q", flag, args)
		}
	}
	assertExists(t, output, true)
}

func TestFFmpegConcatFailureCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.WriteStub(t, dir, "ffmpeg", "echo 'list.txt: Operation not permitted' >&2\nexit 1\n")

	err := NewFFmpegConcat(stub).Concat(context.Background(), "list.txt", filepath.Join(dir, "out.AVI"))
	if !errors.Is(err, ErrMergeFailed) {
		t.Fatalf("expected ErrMergeFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Operation not permitted") {
		t.Fatalf("stderr missing from %v", err)
	}
}
