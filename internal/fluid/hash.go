package fluid

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// SpatialHash buckets particles into a dense uniform grid over the domain.
// Membership is kept current with Move, so a query always reflects the
// latest positions.
type SpatialHash struct {
	spacing float32
	n       int
	buckets [][]int
	home    []int
}

// NewSpatialHash covers the unit domain with buckets of the given size.
func NewSpatialHash(spacing float32, numParticles int) *SpatialHash {
	n := int(math.Ceil(float64(1/spacing))) + 1
	return &SpatialHash{
		spacing: spacing,
		n:       n,
		buckets: make([][]int, n*n*n),
		home:    make([]int, numParticles),
	}
}

// coord clamps out-of-domain positions into the edge buckets, which keeps
// neighbouring particles in neighbouring buckets.
func (h *SpatialHash) coord(x float32) int {
	c := int(math.Floor(float64((x - Origin) / h.spacing)))
	if c < 0 {
		return 0
	}
	if c >= h.n {
		return h.n - 1
	}
	return c
}

func (h *SpatialHash) bucket(xi, yi, zi int) int {
	return xi + yi*h.n + zi*h.n*h.n
}

func (h *SpatialHash) bucketOf(p mgl32.Vec3) int {
	return h.bucket(h.coord(p[0]), h.coord(p[1]), h.coord(p[2]))
}

func (h *SpatialHash) Build(pos []mgl32.Vec3) {
	if len(h.home) < len(pos) {
		h.home = make([]int, len(pos))
	}
	for b := range h.buckets {
		h.buckets[b] = h.buckets[b][:0]
	}
	for i, p := range pos {
		b := h.bucketOf(p)
		h.buckets[b] = append(h.buckets[b], i)
		h.home[i] = b
	}
}

// Move re-buckets particle i at its new position p and reports whether its
// bucket changed.
func (h *SpatialHash) Move(i int, p mgl32.Vec3) bool {
	b := h.bucketOf(p)
	old := h.home[i]
	if b == old {
		return false
	}
	entries := h.buckets[old]
	if k := slices.Index(entries, i); k >= 0 {
		entries[k] = entries[len(entries)-1]
		h.buckets[old] = entries[:len(entries)-1]
	}
	h.buckets[b] = append(h.buckets[b], i)
	h.home[i] = b
	return true
}

// Neighbors appends to out every particle j > after bucketed within one
// bucket of p, in ascending order.
func (h *SpatialHash) Neighbors(p mgl32.Vec3, after int, out []int) []int {
	x0, y0, z0 := h.coord(p[0]), h.coord(p[1]), h.coord(p[2])
	start := len(out)
	for zi := max(z0-1, 0); zi <= min(z0+1, h.n-1); zi++ {
		for yi := max(y0-1, 0); yi <= min(y0+1, h.n-1); yi++ {
			for xi := max(x0-1, 0); xi <= min(x0+1, h.n-1); xi++ {
				for _, j := range h.buckets[h.bucket(xi, yi, zi)] {
					if j > after {
						out = append(out, j)
					}
				}
			}
		}
	}
	slices.Sort(out[start:])
	return out
}
