package domain

const (
	MinRating = 1
	MaxRating = 5
)

// RatingAggregate is a hotel's running rating sum and submission count.
type RatingAggregate struct {
	Total int64 `json:"totalRating"`
	Count int64 `json:"ratingCount"`
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Apply returns the aggregate after one more rating.
func (a RatingAggregate) Apply(rating int) (RatingAggregate, error) {
	if err := ValidateRating(rating); err != nil {
		return a, err
	}
	return RatingAggregate{Total: a.Total + int64(rating), Count: a.Count + 1}, nil
}

// Average is Total/Count, or 0 when nothing has been rated yet.
func (a RatingAggregate) Average() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Total) / float64(a.Count)
}

// Reconcile derives both counters from the full set of ratings.
func Reconcile(ratings []int) RatingAggregate {
	var out RatingAggregate
	for _, r := range ratings {
		out.Total += int64(r)
		out.Count++
	}
	return out
}
