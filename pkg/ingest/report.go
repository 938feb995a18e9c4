package ingest

// Status is the outcome of one event in a batch.
type Status string

const (
	// StatusApplied: point stored and the delivery changed state.
	StatusApplied Status = "applied"
	// StatusStored: point stored, no state change.
	StatusStored Status = "stored"
	// StatusDuplicate: lifecycle event already recorded, dropped.
	StatusDuplicate Status = "duplicate"
	// StatusFailed: nothing from this event was kept.
	StatusFailed Status = "failed"
)

type ItemResult struct {
	Index      int    `json:"index"`
	EventType  string `json:"eventType"`
	DeliveryID *uint  `json:"deliveryId,omitempty"`
	Status     Status `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchReport is returned once the batch is committed.
type BatchReport struct {
	Received        int          `json:"received"`
	Applied         int          `json:"applied"`
	Stored          int          `json:"stored"`
	Duplicates      int          `json:"duplicates"`
	Failed          int          `json:"failed"`
	Notified        int          `json:"notified"`
	AffectedRoutes  []uint       `json:"affectedRoutes"`
	CompletedRoutes []uint       `json:"completedRoutes"`
	Items           []ItemResult `json:"items"`
}

func newBatchReport(n int) *BatchReport {
	return &BatchReport{
		Received:        n,
		AffectedRoutes:  []uint{},
		CompletedRoutes: []uint{},
		Items:           make([]ItemResult, 0, n),
	}
}

func (r *BatchReport) add(item ItemResult) {
	switch item.Status {
	case StatusApplied:
		r.Applied++
	case StatusStored:
		r.Stored++
	case StatusDuplicate:
		r.Duplicates++
	case StatusFailed:
		r.Failed++
	}
	r.Items = append(r.Items, item)
}
