// Package index provides the vector index implementations: a file-persisted
// flat index and a database-backed collection index. Both satisfy
// retrieval.Index and perform brute-force squared-L2 nearest-neighbour
// search in memory.
package index

import (
	"math"
	"sort"
)

// SquaredL2 computes the squared Euclidean distance between two vectors.
// Vectors of mismatched or zero dimension are treated as infinitely far
// apart so they never rank above a real match.
func SquaredL2(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Neighbor holds an entry position and its distance to the query.
type Neighbor struct {
	position int
	distance float64
}

// NewNeighbor creates a new Neighbor.
func NewNeighbor(position int, distance float64) Neighbor {
	return Neighbor{position: position, distance: distance}
}

// Position returns the entry position within the index.
func (n Neighbor) Position() int { return n.position }

// Distance returns the squared L2 distance to the query.
func (n Neighbor) Distance() float64 { return n.distance }

// NearestK finds the k nearest vectors to the query, ordered by
// non-decreasing distance. Returns fewer than k when the index is smaller.
func NearestK(query []float64, vectors [][]float64, k int) []Neighbor {
	if len(vectors) == 0 || k <= 0 {
		return []Neighbor{}
	}

	neighbors := make([]Neighbor, 0, len(vectors))
	for i, v := range vectors {
		neighbors = append(neighbors, NewNeighbor(i, SquaredL2(query, v)))
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k]
}
