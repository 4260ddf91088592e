// ABOUTME: Traversal orientation of an index view as start/end direction flags
// ABOUTME: Four orders: ascending, descending and the two mixed orientations

package labels

// Order is the traversal orientation of an index view
type Order uint8

const (
	// StartAscending walks labels by increasing start; otherwise by decreasing start
	StartAscending Order = 1 << iota
	// EndAscending breaks start ties by increasing end; otherwise by decreasing end
	EndAscending
)

// Orientations
const (
	DescendingOrder   Order = 0
	AscendingOrder          = StartAscending | EndAscending
	StartAscEndDesc         = StartAscending
	StartDescEndAsc         = EndAscending
)

// IsStartAscending reports the primary direction
func (o Order) IsStartAscending() bool {
	return o&StartAscending != 0
}

// IsEndAscending reports the secondary direction
func (o Order) IsEndAscending() bool {
	return o&EndAscending != 0
}

// WithStart returns o with the primary direction replaced
func (o Order) WithStart(ascending bool) Order {
	if ascending {
		return o | StartAscending
	}
	return o &^ StartAscending
}

// WithEnd returns o with the secondary direction replaced
func (o Order) WithEnd(ascending bool) Order {
	if ascending {
		return o | EndAscending
	}
	return o &^ EndAscending
}

// Reverse flips both directions
func (o Order) Reverse() Order {
	return o ^ (StartAscending | EndAscending)
}

// IsMixed reports whether the two directions differ
func (o Order) IsMixed() bool {
	return o.IsStartAscending() != o.IsEndAscending()
}

func (o Order) String() string {
	switch o {
	case AscendingOrder:
		return "ascending"
	case DescendingOrder:
		return "descending"
	case StartAscEndDesc:
		return "ascending-start/descending-end"
	case StartDescEndAsc:
		return "descending-start/ascending-end"
	default:
		return "invalid"
	}
}
