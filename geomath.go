package commonroad

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

const (
	// degenerateSegmentSquared is the squared segment length below which a segment is treated as a point
	degenerateSegmentSquared = 1e-6
	// parallelSinTolerance is the |sin| between two directions below which they are treated as parallel
	parallelSinTolerance = 1e-9
)

// PathDistances returns length of each segment of given line. First value is always zero, so len(result) == len(vertices)
func PathDistances(vertices orb.LineString) []float64 {
	distances := make([]float64, len(vertices))
	for i := 1; i < len(vertices); i++ {
		distances[i] = planar.Distance(vertices[i-1], vertices[i])
	}
	return distances
}

// PathLength returns accumulated length at each vertex of given line
func PathLength(vertices orb.LineString) []float64 {
	distances := PathDistances(vertices)
	for i := 1; i < len(distances); i++ {
		distances[i] += distances[i-1]
	}
	return distances
}

// gradient returns numerical gradient of given series:
// central differences for interior points and one-sided differences at boundaries
func gradient(values []float64) []float64 {
	n := len(values)
	result := make([]float64, n)
	if n < 2 {
		return result
	}
	result[0] = values[1] - values[0]
	result[n-1] = values[n-1] - values[n-2]
	for i := 1; i < n-1; i++ {
		result[i] = (values[i+1] - values[i-1]) / 2.0
	}
	return result
}

// Curvature returns signed curvature at each vertex of given line.
// Vertices with vanishing tangent get zero curvature
func Curvature(vertices orb.LineString) []float64 {
	n := len(vertices)
	result := make([]float64, n)
	if n < 2 {
		return result
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, pt := range vertices {
		xs[i] = pt.X()
		ys[i] = pt.Y()
	}
	dx := gradient(xs)
	dy := gradient(ys)
	ddx := gradient(dx)
	ddy := gradient(dy)
	for i := 0; i < n; i++ {
		denominator := dx[i]*dx[i] + dy[i]*dy[i]
		if denominator == 0 {
			continue
		}
		result[i] = (dx[i]*ddy[i] - ddx[i]*dy[i]) / math.Pow(denominator, 1.5)
	}
	return result
}

// ClosestPointOnSegment returns orthogonal projection of p onto segment [a, b] clamped to the segment.
// Degenerate segment gives a
func ClosestPointOnSegment(a, b, p orb.Point) orb.Point {
	abx := b.X() - a.X()
	aby := b.Y() - a.Y()
	squaredLength := abx*abx + aby*aby
	if squaredLength < degenerateSegmentSquared {
		return a
	}
	t := ((p.X()-a.X())*abx + (p.Y()-a.Y())*aby) / squaredLength
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return orb.Point{a.X() + t*abx, a.Y() + t*aby}
}

// NearestVertexIndex returns index of the vertex closest to given point. First match wins on ties
func NearestVertexIndex(vertices orb.LineString, pt orb.Point) (int, error) {
	if len(vertices) == 0 {
		return -1, errors.Wrap(ErrEmptyPolyline, "Can't find nearest vertex")
	}
	bestIdx := 0
	bestDist := planar.DistanceSquared(vertices[0], pt)
	for i := 1; i < len(vertices); i++ {
		dist := planar.DistanceSquared(vertices[i], pt)
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	return bestIdx, nil
}

// WrapToPi maps given angle into (-pi, pi]
func WrapToPi(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// AngleDifference returns signed difference a - b wrapped into (-pi, pi]
func AngleDifference(a, b float64) float64 {
	return WrapToPi(a - b)
}

// Interpolate does piecewise-linear interpolation of value over monotonically increasing xs.
// Values outside of [xs[0], xs[n-1]] are clamped to the boundary values of ys
func Interpolate(value float64, xs, ys []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, errors.Wrap(ErrEmptyPolyline, "Can't interpolate over empty series")
	}
	if len(xs) != len(ys) {
		return 0, errors.Wrapf(ErrLengthMismatch, "Can't interpolate: %d arguments vs %d values", len(xs), len(ys))
	}
	n := len(xs)
	if value <= xs[0] {
		return ys[0], nil
	}
	if value >= xs[n-1] {
		return ys[n-1], nil
	}
	idx := sort.SearchFloat64s(xs, value)
	x0, x1 := xs[idx-1], xs[idx]
	if x1 == x0 {
		return ys[idx], nil
	}
	fraction := (value - x0) / (x1 - x0)
	return ys[idx-1] + fraction*(ys[idx]-ys[idx-1]), nil
}

// Orientation returns heading at each vertex of given line. The last vertex takes heading of the last segment
func Orientation(vertices orb.LineString) []float64 {
	n := len(vertices)
	result := make([]float64, n)
	if n < 2 {
		return result
	}
	for i := 0; i < n-1; i++ {
		result[i] = math.Atan2(vertices[i+1].Y()-vertices[i].Y(), vertices[i+1].X()-vertices[i].X())
	}
	result[n-1] = result[n-2]
	return result
}

// WidthBetween returns distances between paired vertices of two lines
func WidthBetween(left, right orb.LineString) ([]float64, error) {
	if len(left) != len(right) {
		return nil, errors.Wrapf(ErrLengthMismatch, "Can't evaluate width: %d left vs %d right vertices", len(left), len(right))
	}
	result := make([]float64, len(left))
	for i := range left {
		result[i] = planar.Distance(left[i], right[i])
	}
	return result, nil
}

// PolylineDistance returns minimal distance between given point and line
func PolylineDistance(vertices orb.LineString, pt orb.Point) float64 {
	switch len(vertices) {
	case 0:
		return math.Inf(1)
	case 1:
		return planar.Distance(vertices[0], pt)
	}
	best := math.Inf(1)
	for i := 1; i < len(vertices); i++ {
		dist := planar.Distance(ClosestPointOnSegment(vertices[i-1], vertices[i], pt), pt)
		if dist < best {
			best = dist
		}
	}
	return best
}

// pointAtDistance returns point on line at given arc length. cumulative must be PathLength(line)
func pointAtDistance(line orb.LineString, cumulative []float64, distance float64) orb.Point {
	n := len(line)
	if distance <= 0 {
		return line[0]
	}
	if distance >= cumulative[n-1] {
		return line[n-1]
	}
	idx := sort.SearchFloat64s(cumulative, distance)
	if idx == 0 {
		return line[0]
	}
	segmentLength := cumulative[idx] - cumulative[idx-1]
	if segmentLength == 0 {
		return line[idx]
	}
	return pointOnSegmentByFraction(line[idx-1], line[idx], (distance-cumulative[idx-1])/segmentLength)
}

// Resample returns line with vertices placed each step along the original line. The last vertex is always kept
func Resample(line orb.LineString, step float64) orb.LineString {
	if len(line) < 2 || step <= 0 {
		return copyLine(line)
	}
	cumulative := PathLength(line)
	total := cumulative[len(cumulative)-1]
	result := make(orb.LineString, 0, int(total/step)+2)
	for k := 0; float64(k)*step < total-1e-6; k++ {
		result = append(result, pointAtDistance(line, cumulative, float64(k)*step))
	}
	result = append(result, line[len(line)-1])
	return result
}

// ResampleByCount returns line with given number of vertices evenly spaced along the original line
func ResampleByCount(line orb.LineString, count int) orb.LineString {
	if len(line) < 2 || count < 2 {
		return copyLine(line)
	}
	cumulative := PathLength(line)
	total := cumulative[len(cumulative)-1]
	result := make(orb.LineString, count)
	for k := 0; k < count-1; k++ {
		result[k] = pointAtDistance(line, cumulative, total*float64(k)/float64(count-1))
	}
	result[count-1] = line[len(line)-1]
	return result
}

// ChaikinCornerCutting smooths given line. Endpoints are preserved
func ChaikinCornerCutting(line orb.LineString, refinements int) orb.LineString {
	result := copyLine(line)
	if len(line) < 3 {
		return result
	}
	for r := 0; r < refinements; r++ {
		refined := make(orb.LineString, 0, 2*len(result))
		refined = append(refined, result[0])
		for i := 1; i < len(result); i++ {
			refined = append(refined, pointOnSegmentByFraction(result[i-1], result[i], 0.25))
			refined = append(refined, pointOnSegmentByFraction(result[i-1], result[i], 0.75))
		}
		refined = append(refined, result[len(result)-1])
		result = refined
	}
	return result
}

// RotateAndTranslate rotates vertices by angle around origin and then shifts them by translation
func RotateAndTranslate(vertices []orb.Point, translation orb.Point, angle float64) []orb.Point {
	cosA, sinA := math.Cos(angle), math.Sin(angle)
	result := make([]orb.Point, len(vertices))
	for i, pt := range vertices {
		result[i] = orb.Point{
			pt.X()*cosA - pt.Y()*sinA + translation.X(),
			pt.X()*sinA + pt.Y()*cosA + translation.Y(),
		}
	}
	return result
}

// Check if two segments intersects and returns intersections Point
// p1, p2 - first segment
// p3, p4 - second segment
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, errors.New("The lines are parallel")
	}

	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// leftNormals returns unit left normal of every segment. Zero-length segments borrow normal of neighbour
func leftNormals(line orb.LineString) [][2]float64 {
	normals := make([][2]float64, len(line)-1)
	valid := make([]bool, len(line)-1)
	for i := 1; i < len(line); i++ {
		vec := [2]float64{line[i][0] - line[i-1][0], line[i][1] - line[i-1][1]}
		vecLen := math.Hypot(vec[0], vec[1])
		if vecLen == 0 {
			continue
		}
		normals[i-1] = [2]float64{-vec[1] / vecLen, vec[0] / vecLen}
		valid[i-1] = true
	}
	for i := 1; i < len(normals); i++ {
		if !valid[i] && valid[i-1] {
			normals[i], valid[i] = normals[i-1], true
		}
	}
	for i := len(normals) - 2; i >= 0; i-- {
		if !valid[i] && valid[i+1] {
			normals[i], valid[i] = normals[i+1], true
		}
	}
	return normals
}

// OffsetPolyline returns line shifted by distance to the left (negative distance shifts to the right).
// Number of vertices is preserved: joints are placed at intersection of adjacent offset segments
func OffsetPolyline(line orb.LineString, distance float64) orb.LineString {
	if len(line) < 2 {
		return copyLine(line)
	}
	normals := leftNormals(line)
	segments := make([][2]orb.Point, len(normals))
	for i := range normals {
		offset := orb.Point{normals[i][0] * distance, normals[i][1] * distance}
		segments[i] = [2]orb.Point{
			{line[i][0] + offset[0], line[i][1] + offset[1]},
			{line[i+1][0] + offset[0], line[i+1][1] + offset[1]},
		}
	}

	result := make(orb.LineString, 0, len(line))
	result = append(result, segments[0][0])
	for i := 1; i < len(segments); i++ {
		seg1 := segments[i-1]
		seg2 := segments[i]
		sin := normals[i-1][0]*normals[i][1] - normals[i-1][1]*normals[i][0]
		if math.Abs(sin) < parallelSinTolerance {
			result = append(result, seg2[0])
			continue
		}
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			result = append(result, seg2[0])
			continue
		}
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}

// pointOnSegmentByFraction returns a point on given segment using fraction of its length
func pointOnSegmentByFraction(p, q orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*p[0] + fraction*q[0],
		(1-fraction)*p[1] + fraction*q[1],
	}
}

// cross returns z-component of (b - a) x (c - a)
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// midpoint returns middle of given segment
func midpoint(p, q orb.Point) orb.Point {
	return pointOnSegmentByFraction(p, q, 0.5)
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}

// copyLine returns copy of given line
func copyLine(pts orb.LineString) orb.LineString {
	output := make(orb.LineString, len(pts))
	copy(output, pts)
	return output
}

// dedupeConsecutive removes consecutive vertices closer than tolerance to each other
func dedupeConsecutive(pts orb.LineString, tolerance float64) orb.LineString {
	if len(pts) == 0 {
		return orb.LineString{}
	}
	output := make(orb.LineString, 0, len(pts))
	output = append(output, pts[0])
	for i := 1; i < len(pts); i++ {
		if planar.Distance(output[len(output)-1], pts[i]) <= tolerance {
			continue
		}
		output = append(output, pts[i])
	}
	return output
}
