package detection

import (
	"image"

	"github.com/ironsheep/sat-polygons/internal/imaging"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

// neighbours lists the Moore neighbourhood clockwise (Y grows downward),
// starting from the west.
var neighbours = [8]image.Point{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

// component is one 8-connected group of edge pixels.
type component struct {
	start image.Point // first pixel in raster order
	size  int
}

// labelComponents groups edge pixels into 8-connected components in raster
// scan order. The flood fill uses an explicit stack.
func labelComponents(edges *imaging.EdgeMap) []component {
	width, height := edges.Width(), edges.Height()
	visited := make([]bool, width*height)
	var components []component

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !edges.At(x, y) {
				continue
			}
			c := component{start: image.Pt(x, y)}
			stack := []image.Point{c.start}
			visited[y*width+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.size++

				for _, d := range neighbours {
					q := p.Add(d)
					if !edges.At(q.X, q.Y) || visited[q.Y*width+q.X] {
						continue
					}
					visited[q.Y*width+q.X] = true
					stack = append(stack, q)
				}
			}
			components = append(components, c)
		}
	}
	return components
}

// traceBoundary follows the outer boundary of the component containing start
// with Moore-neighbour tracing. start must be the component's first pixel in
// raster order, so its western neighbour is background.
//
// Tracing stops when the walk is back at start and about to repeat its first
// move, or after a step cap proportional to the map size. The returned chain
// is open and lists boundary pixels in visiting order; pixels on one-pixel
// wide spurs appear once per pass.
func traceBoundary(edges *imaging.EdgeMap, start image.Point) []image.Point {
	chain := []image.Point{start}
	maxSteps := 4*edges.Width()*edges.Height() + 8

	c := start
	b := start.Add(neighbours[0])
	var first image.Point

	for step := 0; step < maxSteps; step++ {
		bi := direction(c, b)
		next, backtrack, ok := image.Point{}, image.Point{}, false
		for k := 1; k <= 8; k++ {
			i := (bi + k) % 8
			p := c.Add(neighbours[i])
			if edges.At(p.X, p.Y) {
				next = p
				backtrack = c.Add(neighbours[(i+7)%8])
				ok = true
				break
			}
		}
		if !ok {
			// Isolated pixel.
			return chain
		}

		if step == 0 {
			first = next
		} else if c == start && next == first {
			break
		}
		c, b = next, backtrack
		chain = append(chain, c)
	}

	if n := len(chain); n > 1 && chain[n-1] == start {
		chain = chain[:n-1]
	}
	return chain
}

// direction returns the index in neighbours of the offset from c to p. p must
// be one of c's eight neighbours.
func direction(c, p image.Point) int {
	d := p.Sub(c)
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// compressChain keeps only the pixels where the chain turns: runs of
// identical unit steps collapse to their end points. The chain is treated as
// closed.
func compressChain(chain []image.Point) orb.Ring {
	n := len(chain)
	if n < 3 {
		ring := make(orb.Ring, 0, n)
		for _, p := range chain {
			ring = append(ring, orb.Point{float64(p.X), float64(p.Y)})
		}
		return ring
	}

	ring := make(orb.Ring, 0, n/2)
	for i := 0; i < n; i++ {
		prev := chain[(i+n-1)%n]
		cur := chain[i]
		next := chain[(i+1)%n]
		if cur.Sub(prev) == next.Sub(cur) {
			continue
		}
		ring = append(ring, orb.Point{float64(cur.X), float64(cur.Y)})
	}
	return ring
}

// externalIndex holds the bounding boxes of external contours traced so far,
// used to recognise components nested inside an earlier contour.
type externalIndex struct {
	tree  rtree.RTreeG[int]
	rings []orb.Ring
}

func (x *externalIndex) add(r orb.Ring) {
	b := r.Bound()
	x.tree.Insert(b.Min, b.Max, len(x.rings))
	x.rings = append(x.rings, r)
}

// contains reports whether p lies inside (or on) any indexed contour.
func (x *externalIndex) contains(p orb.Point) bool {
	inside := false
	x.tree.Search(p, p, func(_, _ [2]float64, i int) bool {
		if planar.RingContains(x.rings[i], p) {
			inside = true
		}
		return !inside
	})
	return inside
}
