package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		percent float64
		label   string
		want    bool
	}{
		{0, "a.AVI", true},
		{10, "a.AVI", false},
		{25, "a.AVI", true},
		{30, "a.AVI", false},
		{100, "a.AVI", true},
		{100, "a.AVI", false},
		{0, "b.AVI", true},
		{-1, "b.AVI", false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.percent, step.label); got != step.want {
			t.Fatalf("step %d (%v, %q): got %v want %v", i, step.percent, step.label, got, step.want)
		}
	}
}

func TestProgressSamplerResetAndNil(t *testing.T) {
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(50, "x") {
		t.Fatal("nil sampler should always log")
	}
	nilSampler.Reset()

	s := NewProgressSampler(0)
	if !s.ShouldLog(0, "x") {
		t.Fatal("first event should log")
	}
	s.Reset()
	if !s.ShouldLog(0, "x") {
		t.Fatal("event after reset should log")
	}
}
