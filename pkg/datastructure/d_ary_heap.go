package datastructure

import (
	"errors"
	"math"
)

var ErrEmptyHeap = errors.New("heap is empty")

type PriorityQueueNode[T any] struct {
	rank     float64
	tieBreak float64 // smaller wins when ranks are equal
	seq      uint64  // insertion order, smaller wins when rank and tieBreak are equal
	item     T
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() float64 {
	return p.rank
}

func (p *PriorityQueueNode[T]) GetTieBreak() float64 {
	return p.tieBreak
}

func NewPriorityQueueNode[T any](rank float64, item T) PriorityQueueNode[T] {
	return PriorityQueueNode[T]{rank: rank, item: item}
}

func NewPriorityQueueNodeWithTieBreak[T any](rank, tieBreak float64, item T) PriorityQueueNode[T] {
	return PriorityQueueNode[T]{rank: rank, tieBreak: tieBreak, item: item}
}

// MinHeap d-ary heap priorityqueue. nodes are stored by value in one slice, there is no decrease key:
// callers insert a node again with a better rank and skip the stale copy when it is popped.
type MinHeap[T any] struct {
	heap []PriorityQueueNode[T]
	d    int
	seq  uint64
}

func NewBinaryHeap[T any]() *MinHeap[T] {
	return NewdAryHeap[T](2)
}

func NewFourAryHeap[T any]() *MinHeap[T] {
	return NewdAryHeap[T](4)
}

func NewdAryHeap[T any](d int) *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		d:    d,
	}
}

func (h *MinHeap[T]) Preallocate(maxSearchSize int) {
	h.heap = make([]PriorityQueueNode[T], 0, maxSearchSize)
}

// parent get index of parent
func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

func (h *MinHeap[T]) less(i, j int) bool {
	a, b := &h.heap[i], &h.heap[j]
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.tieBreak != b.tieBreak {
		return a.tieBreak < b.tieBreak
	}
	return a.seq < b.seq
}

// heapifyUp. swap with parent while smaller than parent. O(log_d N).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		h.Swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown. swap with the smallest child while a child is smaller. O(d log_d N).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := leftMostChild + h.d
		if sentinel > len(h.heap) {
			sentinel = len(h.heap)
		}

		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.less(i, smallest) {
				smallest = i
			}
		}

		if !h.less(smallest, index) {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

// Clear empties the heap and keeps its capacity.
func (h *MinHeap[T]) Clear() {
	h.heap = h.heap[:0]
	h.seq = 0
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) GetMinrank() float64 {
	if h.IsEmpty() {
		return math.Inf(1)
	}
	return h.heap[0].rank
}

// Insert. O(log_d N)
func (h *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	node.seq = h.seq
	h.seq++
	h.heap = append(h.heap, node)
	h.heapifyUp(len(h.heap) - 1)
}

// ExtractMin. pop the root. O(d log_d N)
func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	root := h.heap[0]

	last := len(h.heap) - 1
	h.Swap(0, last)
	h.heap = h.heap[:last]
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root, nil
}
