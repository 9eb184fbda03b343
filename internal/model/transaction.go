package model

// ResaleTransaction is a read-only fact row from the resale_transaction
// table, joined with its town name. Months are ISO dates on the first of
// the month ("2025-08-01"); nullable columns are coalesced to zero values
// by the repository.
type ResaleTransaction struct {
	Month                string  `db:"month" json:"month"`
	Town                 string  `db:"town" json:"town"`
	FlatType             string  `db:"flat_type" json:"flat_type"`
	FlatModel            string  `db:"flat_model" json:"flat_model"`
	StoreyLow            int     `db:"storey_low" json:"storey_low"`
	StoreyHigh           int     `db:"storey_high" json:"storey_high"`
	FloorAreaSqm         float64 `db:"floor_area_sqm" json:"floor_area_sqm"`
	LeaseCommenceYear    int     `db:"lease_commence_year" json:"lease_commence_year"`
	RemainingLeaseMonths int     `db:"remaining_lease_months" json:"remaining_lease_months"`
	ResalePrice          float64 `db:"resale_price" json:"resale_price"`
}

// StoreyPrice is the narrow projection used for floor-premium computation.
type StoreyPrice struct {
	Month       string  `db:"month"`
	StoreyLow   int     `db:"storey_low"`
	StoreyHigh  int     `db:"storey_high"`
	ResalePrice float64 `db:"resale_price"`
}

// SegmentCount is one entry of the low-supply ranking.
type SegmentCount struct {
	Town     string `db:"town" json:"town"`
	FlatType string `db:"flat_type" json:"flat_type"`
	N        int    `db:"n" json:"n"`
}
