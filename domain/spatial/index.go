// Package spatial keeps an in-memory index of location coordinates for
// radius queries.
package spatial

import (
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// cellLevel buckets points into cells of roughly 10km on a side.
const cellLevel = 10

// coverCells bounds the number of cells the query covering may use.
const coverCells = 8

// Neighbor is a location found by a radius query.
type Neighbor struct {
	ID             valueobjects.LocationID `json:"id"`
	DistanceMeters float64                 `json:"distance_meters"`
}

// Index maps location ids to points and buckets them by S2 cell. Queries take
// the read lock so they run concurrently with each other; Upsert and Remove
// take the write lock.
type Index struct {
	mu      sync.RWMutex
	points  map[valueobjects.LocationID]s2.LatLng
	cells   map[valueobjects.LocationID]s2.CellID
	buckets map[s2.CellID]map[valueobjects.LocationID]struct{}
	keys    []s2.CellID // sorted bucket keys
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		points:  make(map[valueobjects.LocationID]s2.LatLng),
		cells:   make(map[valueobjects.LocationID]s2.CellID),
		buckets: make(map[s2.CellID]map[valueobjects.LocationID]struct{}),
	}
}

// Upsert inserts id or moves it to the new coordinates.
func (ix *Index) Upsert(id valueobjects.LocationID, lat, lon float64) error {
	if err := valueobjects.ValidateLatLon(lat, lon); err != nil {
		return err
	}
	ll := s2.LatLngFromDegrees(lat, lon)
	cell := s2.CellIDFromLatLng(ll).Parent(cellLevel)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.cells[id]; ok && old != cell {
		ix.detach(id, old)
	}
	ix.points[id] = ll
	ix.cells[id] = cell

	bucket, ok := ix.buckets[cell]
	if !ok {
		bucket = make(map[valueobjects.LocationID]struct{})
		ix.buckets[cell] = bucket
		i := sort.Search(len(ix.keys), func(i int) bool { return ix.keys[i] >= cell })
		ix.keys = append(ix.keys, 0)
		copy(ix.keys[i+1:], ix.keys[i:])
		ix.keys[i] = cell
	}
	bucket[id] = struct{}{}
	return nil
}

// Remove drops id; it reports whether the id was indexed.
func (ix *Index) Remove(id valueobjects.LocationID) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cell, ok := ix.cells[id]
	if !ok {
		return false
	}
	ix.detach(id, cell)
	delete(ix.points, id)
	delete(ix.cells, id)
	return true
}

// detach removes id from the bucket of cell. Caller holds the write lock.
func (ix *Index) detach(id valueobjects.LocationID, cell s2.CellID) {
	bucket := ix.buckets[cell]
	delete(bucket, id)
	if len(bucket) > 0 {
		return
	}
	delete(ix.buckets, cell)
	i := sort.Search(len(ix.keys), func(i int) bool { return ix.keys[i] >= cell })
	if i < len(ix.keys) && ix.keys[i] == cell {
		ix.keys = append(ix.keys[:i], ix.keys[i+1:]...)
	}
}

// Get returns the indexed coordinates of id.
func (ix *Index) Get(id valueobjects.LocationID) (valueobjects.Coordinates, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ll, ok := ix.points[id]
	if !ok {
		return valueobjects.Coordinates{}, false
	}
	return valueobjects.Coordinates{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}, true
}

// Len returns the number of indexed locations.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.points)
}

// Nearby returns every location within radiusMeters of (lat, lon) by
// great-circle distance, nearest first with ties broken by ascending id.
func (ix *Index) Nearby(lat, lon, radiusMeters float64) ([]Neighbor, error) {
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return nil, pkgerrors.NewValidationErrorf("radius must be a non-negative number of meters, got %v", radiusMeters)
	}
	if err := valueobjects.ValidateLatLon(lat, lon); err != nil {
		return nil, err
	}
	center := s2.LatLngFromDegrees(lat, lon)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var result []Neighbor
	collect := func(id valueobjects.LocationID) {
		d := float64(center.Distance(ix.points[id])) * EarthRadiusMeters
		if d <= radiusMeters {
			result = append(result, Neighbor{ID: id, DistanceMeters: d})
		}
	}

	if radiusMeters >= math.Pi*EarthRadiusMeters {
		for id := range ix.points {
			collect(id)
		}
	} else {
		for _, cell := range ix.covering(center, radiusMeters) {
			lo, hi := cell.RangeMin(), cell.RangeMax()
			i := sort.Search(len(ix.keys), func(i int) bool { return ix.keys[i] >= lo })
			for ; i < len(ix.keys) && ix.keys[i] <= hi; i++ {
				for id := range ix.buckets[ix.keys[i]] {
					collect(id)
				}
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DistanceMeters != result[j].DistanceMeters {
			return result[i].DistanceMeters < result[j].DistanceMeters
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// covering returns cells no finer than the bucket level whose union contains
// the spherical cap around center. The cap is padded slightly so points on the
// boundary survive the chord/haversine rounding difference; the exact distance
// filter runs afterwards.
func (ix *Index) covering(center s2.LatLng, radiusMeters float64) []s2.CellID {
	angle := s1.Angle(radiusMeters/EarthRadiusMeters)*(1+1e-9) + 1e-12
	capRegion := s2.CapFromCenterAngle(s2.PointFromLatLng(center), angle)

	coverer := &s2.RegionCoverer{MinLevel: 0, MaxLevel: cellLevel, LevelMod: 1, MaxCells: coverCells}
	covering := coverer.Covering(capRegion)

	// Cells of a normalized union are disjoint, so no bucket is visited twice.
	covering.Normalize()
	return covering
}
