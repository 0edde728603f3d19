package timecode

// Tally counts valid readings and reports the most frequent one.
// The zero value is ready to use.
type Tally struct {
	counts map[Reading]int
	order  []Reading
	total  int
}

// Add records raw OCR text. It returns false, and records nothing, when the
// text is not a valid reading.
func (t *Tally) Add(text string) bool {
	if !Valid(text) {
		return false
	}
	r := Reading(text)
	if t.counts == nil {
		t.counts = make(map[Reading]int)
	}
	if _, seen := t.counts[r]; !seen {
		t.order = append(t.order, r)
	}
	t.counts[r]++
	t.total++
	return true
}

// Len returns the number of valid readings recorded.
func (t *Tally) Len() int {
	return t.total
}

// Mode returns the reading with the highest count; ties go to the reading
// seen first. ok is false when nothing was recorded.
func (t *Tally) Mode() (Reading, bool) {
	var best Reading
	bestCount := 0
	for _, r := range t.order {
		if c := t.counts[r]; c > bestCount {
			best, bestCount = r, c
		}
	}
	return best, bestCount > 0
}

// Counts returns a copy of the per-reading counts.
func (t *Tally) Counts() map[Reading]int {
	out := make(map[Reading]int, len(t.counts))
	for r, c := range t.counts {
		out[r] = c
	}
	return out
}

// Distinct returns the distinct readings in first-seen order.
func (t *Tally) Distinct() []string {
	out := make([]string, len(t.order))
	for i, r := range t.order {
		out[i] = string(r)
	}
	return out
}
