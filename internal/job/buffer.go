package job

import "sync"

// LineBuffer is an ordered, append-only capture of the lines of one stream.
// Indices are stable: the n-th appended line stays at index n. Once frozen,
// appends are ignored.
type LineBuffer struct {
	mx     sync.RWMutex
	lines  []string
	frozen bool
}

func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

// Append adds line and reports whether it was accepted.
func (b *LineBuffer) Append(line string) bool {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.frozen {
		return false
	}
	b.lines = append(b.lines, line)
	return true
}

func (b *LineBuffer) Freeze() {
	b.mx.Lock()
	b.frozen = true
	b.mx.Unlock()
}

func (b *LineBuffer) Frozen() bool {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.frozen
}

func (b *LineBuffer) Len() int {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return len(b.lines)
}

// At returns the line at index i. It panics if i is out of range.
func (b *LineBuffer) At(i int) string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.lines[i]
}

// Lines returns a copy of the captured lines.
func (b *LineBuffer) Lines() []string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return append([]string(nil), b.lines...)
}
