package surface

// OpenList is a LIFO stack of flattened voxel indices awaiting processing.
// Its logical capacity starts small and doubles on demand up to a ceiling;
// pushes beyond the ceiling fail.
type OpenList struct {
	items    []int32
	capacity int
	initial  int
	ceiling  int
	peak     int
}

// NewOpenList returns a list with the given starting capacity and ceiling.
// A ceiling below initial lowers the starting capacity to match.
func NewOpenList(initial, ceiling int) *OpenList {
	l := &OpenList{}
	l.Configure(initial, ceiling)
	return l
}

// Configure changes sizing and empties the list.
func (l *OpenList) Configure(initial, ceiling int) {
	if ceiling < 1 {
		ceiling = 1
	}
	if initial < 1 {
		initial = 1
	}
	if initial > ceiling {
		initial = ceiling
	}
	l.initial = initial
	l.ceiling = ceiling
	l.capacity = initial
	l.items = make([]int32, 0, initial)
	l.peak = 0
}

// Push adds a voxel index. It returns false when the list is at its ceiling.
func (l *OpenList) Push(v int) bool {
	if len(l.items) == l.capacity {
		if l.capacity >= l.ceiling {
			return false
		}
		l.capacity = min(l.capacity*2, l.ceiling)
	}
	l.items = append(l.items, int32(v))
	if len(l.items) > l.peak {
		l.peak = len(l.items)
	}
	return true
}

// Pop removes and returns the most recently pushed index.
func (l *OpenList) Pop() (int, bool) {
	n := len(l.items)
	if n == 0 {
		return 0, false
	}
	v := l.items[n-1]
	l.items = l.items[:n-1]
	return int(v), true
}

// Len returns the number of queued voxels.
func (l *OpenList) Len() int {
	return len(l.items)
}

// Cap returns the current logical capacity.
func (l *OpenList) Cap() int {
	return l.capacity
}

// Ceiling returns the hard capacity limit.
func (l *OpenList) Ceiling() int {
	return l.ceiling
}

// Peak returns the largest length reached since the last Reset.
func (l *OpenList) Peak() int {
	return l.peak
}

// Reset empties the list. Grown capacity is kept for the next pass.
func (l *OpenList) Reset() {
	l.items = l.items[:0]
	l.peak = 0
}
