package entity

// SkipReason explains why an input row produced no product.
type SkipReason string

const (
	SkipMissingName  SkipReason = "missing_name"
	SkipInvalidPrice SkipReason = "invalid_price"
	SkipOverCap      SkipReason = "over_cap"
)

// FileSummary is the outcome of reading one CSV source.
type FileSummary struct {
	Source   string             `json:"source"`
	Category string             `json:"category"`
	Missing  bool               `json:"missing"`
	Rows     int                `json:"rows"`
	Valid    int                `json:"valid"`
	Skipped  map[SkipReason]int `json:"skipped"`
	Err      error              `json:"-"`
}

func (s *FileSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// ImportSummary reports a whole importer run.
type ImportSummary struct {
	Files         []FileSummary   `json:"files"`
	Parsed        int             `json:"parsed"`
	Inserted      int             `json:"inserted"`
	FailedBatches int             `json:"failed_batches"`
	Total         int64           `json:"total"`
	ByCategory    []CategoryCount `json:"by_category"`
}

// DepartmentStat aggregates generated deals per department.
type DepartmentStat struct {
	Department  string  `json:"department" bson:"_id"`
	Count       int64   `json:"count" bson:"count"`
	AvgDiscount float64 `json:"avg_discount" bson:"avgDiscount"`
	AvgSavings  float64 `json:"avg_savings" bson:"avgSavings"`
}

// DealSummary reports a whole deal generation run.
type DealSummary struct {
	Eligible      int              `json:"eligible"`
	Selected      int              `json:"selected"`
	Inserted      int              `json:"inserted"`
	FailedBatches int              `json:"failed_batches"`
	Total         int64            `json:"total"`
	Current       int64            `json:"current"`
	Upcoming      int64            `json:"upcoming"`
	ByDepartment  []DepartmentStat `json:"by_department"`
}

// CleanupSummary reports document counts around a cleanup run.
type CleanupSummary struct {
	ProductsBefore int64 `json:"products_before"`
	DealsBefore    int64 `json:"deals_before"`
	ProductsAfter  int64 `json:"products_after"`
	DealsAfter     int64 `json:"deals_after"`
}
