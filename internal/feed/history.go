package feed

// DefaultHistorySize is the number of recent labels kept.
const DefaultHistorySize = 5

// History is a bounded list of labels, most recent first.
// It is not safe for concurrent use; the Simulator guards it.
type History struct {
	size   int
	labels []string
}

// NewHistory creates a History that keeps at most size labels.
// Sizes below 1 fall back to DefaultHistorySize.
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		labels: make([]string, 0, size),
	}
}

// Push prepends label, evicting the oldest entry once the bound is exceeded.
func (h *History) Push(label string) {
	if len(h.labels) < h.size {
		h.labels = append(h.labels, "")
	}
	copy(h.labels[1:], h.labels[:len(h.labels)-1])
	h.labels[0] = label
}

// Labels returns a copy of the history, most recent first.
func (h *History) Labels() []string {
	out := make([]string, len(h.labels))
	copy(out, h.labels)
	return out
}

// Len returns the number of labels held.
func (h *History) Len() int {
	return len(h.labels)
}
