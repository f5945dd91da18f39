package accumulator

// Compile-time check to ensure TwoD satisfies the arena contract.
var _ Arena[uint16] = (*TwoD[uint16])(nil)

// dirty means the row has not been touched this query and its logical
// values are zero.
const dirty = 0xFF

// TwoD manages the accumulators as a rectangle of rows with one dirty flag
// per row. Rewind only resets the flags; a row is zeroed the first time one
// of its accumulators is touched. Dirty flags (rather than clean flags) need
// one fewer instruction to test.
type TwoD[E Element] struct {
	dirtyFlag   []byte
	accumulator []E

	width     uint32
	shift     uint32
	rows      uint32
	documents uint32
}

// NewTwoD creates an uninitialised 2-D arena. Init must be called before
// first use.
func NewTwoD[E Element]() *TwoD[E] {
	return &TwoD[E]{width: 1, shift: 1}
}

// Init configures the arena for documents accumulators with rows of
// 1<<widthHint accumulators (or a width near sqrt(documents) when the hint
// is absent). The rectangle is rounded up to whole rows so the last row is
// always complete.
func (a *TwoD[E]) Init(documents uint32, widthHint int) error {
	if documents > MaxDocuments {
		return ErrTooManyDocuments
	}

	a.documents = documents
	a.shift = widthShift(documents, widthHint)
	a.width = 1 << a.shift

	// Round up so a partial last row still gets a flag.
	a.rows = (documents + a.width - 1) / a.width

	allocated := uint64(a.width) * uint64(a.rows)
	if allocated > MaxDocuments+MaxDocuments/2 {
		return ErrArenaCapacity
	}

	a.accumulator = make([]E, allocated)
	a.dirtyFlag = make([]byte, a.rows)
	a.Rewind()
	return nil
}

// row returns the dirty flag index for an accumulator.
func (a *TwoD[E]) row(id uint32) uint32 {
	return id >> a.shift
}

// materialise zeroes the row holding id if it has not been touched this
// query and clears its flag.
func (a *TwoD[E]) materialise(id uint32) {
	flag := a.row(id)
	if a.dirtyFlag[flag] != 0 {
		start := flag << a.shift
		clear(a.accumulator[start : start+a.width])
		a.dirtyFlag[flag] = 0
	}
}

// Add adds score to the accumulator for id, zeroing the row first if this is
// its first touch of the query.
func (a *TwoD[E]) Add(id uint32, score E) {
	a.materialise(id)
	a.accumulator[id] += score
}

// Get returns the logical value of the accumulator for id: zero while the
// row's dirty flag is still set, the stored value otherwise. Get never
// materialises a row.
func (a *TwoD[E]) Get(id uint32) E {
	if a.dirtyFlag[a.row(id)] != 0 {
		return 0
	}
	return a.accumulator[id]
}

// Index returns the document id for a reference from this arena.
func (a *TwoD[E]) Index(ref uint32) uint32 {
	return ref
}

// Values exposes the raw accumulator rectangle. Rows whose dirty flag is set
// hold stale bytes; only references to touched accumulators may be read
// through it.
func (a *TwoD[E]) Values() []E {
	return a.accumulator
}

// Size returns the number of accumulators requested at Init.
func (a *TwoD[E]) Size() uint32 {
	return a.documents
}

// Rewind marks every row dirty. O(rows), not O(documents).
func (a *TwoD[E]) Rewind() {
	for i := range a.dirtyFlag {
		a.dirtyFlag[i] = dirty
	}
}

// Width returns the row width in accumulators.
func (a *TwoD[E]) Width() uint32 {
	return a.width
}

// Rows returns the number of rows (dirty flags).
func (a *TwoD[E]) Rows() uint32 {
	return a.rows
}
