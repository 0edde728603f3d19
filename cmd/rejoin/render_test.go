package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"rejoin/internal/merge"
	"rejoin/internal/state"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", false)
	if !strings.Contains(line, "FFmpeg:") || !strings.Contains(line, "[OK] /usr/bin/ffmpeg") {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Tesseract", statusError, "missing", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected no color for non-file writer")
	}
}

func TestPrintMergeReportWrapsLongDetail(t *testing.T) {
	var buf bytes.Buffer
	detail := strings.Repeat("concat failed ", 10)
	printMergeReport(&buf, merge.Report{Results: []merge.ChainResult{
		{Output: "/out/a_b.AVI", Status: merge.StatusFailed, Err: errors.New(detail)},
	}})
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "concat failed") && len(line) > detailWidthMax+nameWidthMax+40 {
			t.Fatalf("detail not wrapped: %q", line)
		}
	}
	if strings.Contains(buf.String(), ansiRed) {
		t.Fatal("expected plain status for non-terminal writer")
	}
}

func TestStatusTransformerColorsOutcome(t *testing.T) {
	plain := statusTransformer(false)(merge.StatusFailed)
	if plain != "failed" {
		t.Fatalf("plain status = %q", plain)
	}
	colored := statusTransformer(true)(merge.StatusMerged)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green status, got %q", colored)
	}
}

func TestPrintMergeReport(t *testing.T) {
	var buf bytes.Buffer
	printMergeReport(&buf, merge.Report{Results: []merge.ChainResult{
		{Output: "/out/a_b.AVI", Status: merge.StatusMerged, Bytes: 2048, Deleted: 2},
		{Output: "/out/c_d.AVI", Status: merge.StatusFailed, Err: errors.New("boom")},
	}})
	out := buf.String()
	for _, want := range []string{"a_b.AVI", "2.0 KiB", "boom", "Merged 1, skipped 0, failed 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestPrintChains(t *testing.T) {
	var buf bytes.Buffer
	printChains(&buf, []state.Chain{{"/in/MOVI0001.AVI", "/in/MOVI0002.AVI", "/in/MOVI0003.AVI"}})
	out := buf.String()
	if !strings.Contains(out, "MOVI0001_MOVI0002_MOVI0003.AVI") {
		t.Fatalf("unexpected chains output %q", out)
	}
}
