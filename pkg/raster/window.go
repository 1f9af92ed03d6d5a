package raster

// Window is a circular buffer of a fixed number of equally sized rows.
// Logical row i (0 is the oldest) lives in physical slot (i+first) mod len.
// The window owns its storage; callers only borrow slot slices.
type Window[T Sample] struct {
	slots [][]T
	first int
}

// NewWindow allocates n rows of rowLen elements each.
func NewWindow[T Sample](n, rowLen int) *Window[T] {
	backing := make([]T, n*rowLen)
	slots := make([][]T, n)
	for i := range slots {
		slots[i] = backing[i*rowLen : (i+1)*rowLen : (i+1)*rowLen]
	}
	return &Window[T]{slots: slots}
}

// Len returns the number of rows.
func (w *Window[T]) Len() int { return len(w.slots) }

// Row returns logical row i. Rows outside [0, Len) wrap around.
func (w *Window[T]) Row(i int) []T {
	n := len(w.slots)
	return w.slots[((i+w.first)%n+n)%n]
}

// Newest returns the last logical row.
func (w *Window[T]) Newest() []T { return w.Row(len(w.slots) - 1) }

// Advance retires the oldest row; its storage becomes the newest row.
func (w *Window[T]) Advance() { w.first = (w.first + 1) % len(w.slots) }

// CopyRow overwrites logical row dst with the contents of logical row src.
func (w *Window[T]) CopyRow(dst, src int) { copy(w.Row(dst), w.Row(src)) }
