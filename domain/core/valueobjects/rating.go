package valueobjects

import "encoding/json"

// RatingAggregate is the running statistic of all ratings applied to a
// location. Sum is kept exactly so that Average()*Count equals the sum of the
// applied values.
type RatingAggregate struct {
	Sum   float64 `json:"-"`
	Count int64   `json:"count"`
}

// NewRatingAggregate rebuilds an aggregate from a stored average and count
func NewRatingAggregate(average float64, count int64) RatingAggregate {
	if count <= 0 {
		return RatingAggregate{}
	}
	return RatingAggregate{Sum: average * float64(count), Count: count}
}

// Average returns 0 for a location nobody has rated
func (r RatingAggregate) Average() float64 {
	if r.Count == 0 {
		return 0
	}
	return r.Sum / float64(r.Count)
}

// Apply returns the aggregate with one more rating folded in
func (r RatingAggregate) Apply(value float64) RatingAggregate {
	return RatingAggregate{Sum: r.Sum + value, Count: r.Count + 1}
}

type ratingJSON struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// MarshalJSON exposes the average instead of the raw sum
func (r RatingAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(ratingJSON{Average: r.Average(), Count: r.Count})
}

// UnmarshalJSON accepts the {average, count} form
func (r *RatingAggregate) UnmarshalJSON(data []byte) error {
	var v ratingJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewRatingAggregate(v.Average, v.Count)
	return nil
}
