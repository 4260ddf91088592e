package labelindex

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/nainya/spanindex/pkg/labels"
)

type testLabel struct {
	labels.Base
	seq int
}

func lbl(start, end int) *testLabel {
	return &testLabel{Base: labels.At(start, end)}
}

func makeLabels(spans ...[2]int) []*testLabel {
	out := make([]*testLabel, len(spans))
	for i, s := range spans {
		out[i] = &testLabel{Base: labels.At(s[0], s[1]), seq: i}
	}
	return out
}

func sp(start, end int) labels.Span {
	return labels.Span{Start: start, End: end}
}

func spansOf(idx labels.Index[*testLabel]) []labels.Span {
	return labels.Spans(idx)
}

// randomLabels produces overlapping labels with frequent start ties and exact duplicates
func randomLabels(r *rand.Rand, n, textLen int) []*testLabel {
	out := make([]*testLabel, n)
	for i := range out {
		start := r.IntN(textLen)
		end := start + r.IntN(8)
		out[i] = &testLabel{Base: labels.At(start, end), seq: i}
	}
	return out
}

// randomDistinct tiles the text with non-overlapping labels, some touching
func randomDistinct(r *rand.Rand, n int) []*testLabel {
	out := make([]*testLabel, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		pos += r.IntN(3)
		length := r.IntN(5) + 1
		out = append(out, &testLabel{Base: labels.At(pos, pos+length), seq: i})
		pos += length
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// oracleOrder sorts spans the way a view in the given orientation walks them
func oracleOrder(spans []labels.Span, order labels.Order) []labels.Span {
	out := slices.Clone(spans)
	slices.SortStableFunc(out, func(a, b labels.Span) int {
		c := cmp.Compare(a.Start, b.Start)
		if !order.IsStartAscending() {
			c = -c
		}
		if c != 0 {
			return c
		}
		c = cmp.Compare(a.End, b.End)
		if !order.IsEndAscending() {
			c = -c
		}
		return c
	})
	return out
}

func filter(items []*testLabel, keep func(labels.Span) bool) []labels.Span {
	var out []labels.Span
	for _, l := range items {
		if keep(l.Location()) {
			out = append(out, l.Location())
		}
	}
	return out
}

func sameMultiset(a, b []labels.Span) bool {
	x, y := slices.Clone(a), slices.Clone(b)
	slices.SortFunc(x, labels.Span.Compare)
	slices.SortFunc(y, labels.Span.Compare)
	return slices.Equal(x, y)
}

var allOrders = []labels.Order{
	labels.AscendingOrder,
	labels.DescendingOrder,
	labels.StartAscEndDesc,
	labels.StartDescEndAsc,
}

func orient(idx labels.Index[*testLabel], order labels.Order) labels.Index[*testLabel] {
	if order.IsStartAscending() {
		idx = idx.AscendingStart()
	} else {
		idx = idx.DescendingStart()
	}
	if order.IsEndAscending() {
		return idx.AscendingEnd()
	}
	return idx.DescendingEnd()
}
