package shuffle

import "math/bits"

// fenwick is a binary indexed tree over non-negative group weights. Index 0 of
// tree is unused; element i (0-based) lives at tree[i+1].
type fenwick struct {
	tree []int
}

func newFenwick(weights []int) fenwick {
	tree := make([]int, len(weights)+1)
	for i, w := range weights {
		tree[i+1] += w
		if parent := (i + 1) + lowbit(i+1); parent < len(tree) {
			tree[parent] += tree[i+1]
		}
	}
	return fenwick{tree: tree}
}

func lowbit(i int) int {
	return i & -i
}

func (f *fenwick) len() int {
	if len(f.tree) == 0 {
		return 0
	}
	return len(f.tree) - 1
}

// push appends a new element with weight w.
func (f *fenwick) push(w int) {
	if len(f.tree) == 0 {
		f.tree = []int{0}
	}
	i := len(f.tree)
	f.tree = append(f.tree, w+f.prefix(i-1)-f.prefix(i-lowbit(i)))
}

// add adjusts element i by delta.
func (f *fenwick) add(i, delta int) {
	for j := i + 1; j < len(f.tree); j += lowbit(j) {
		f.tree[j] += delta
	}
}

// prefix sums the first k elements.
func (f *fenwick) prefix(k int) int {
	sum := 0
	for j := k; j > 0; j -= lowbit(j) {
		sum += f.tree[j]
	}
	return sum
}

func (f *fenwick) total() int {
	return f.prefix(f.len())
}

// find returns the element whose cumulative range contains target, with
// 0 <= target < total(). Zero-weight elements are never returned.
func (f *fenwick) find(target int) int {
	n := f.len()
	if n == 0 {
		return 0
	}
	pos := 0
	for step := 1 << (bits.Len(uint(n)) - 1); step > 0; step >>= 1 {
		if next := pos + step; next <= n && f.tree[next] <= target {
			pos = next
			target -= f.tree[next]
		}
	}
	return pos
}
