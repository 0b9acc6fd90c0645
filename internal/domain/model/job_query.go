package model

// JobListOptions defines filtering and pagination for job list queries.
type JobListOptions struct {
	Status    *JobStatus // Optional filter by status (queued, running, succeeded, failed)
	Type      *JobType   // Optional filter by type
	SortOrder string     // "asc" or "desc" by created_at (default: "desc")
	Limit     int        // Pagination limit
	Offset    int        // Pagination offset
}

// Normalize applies bounds and defaults so repositories can trust the options.
func (o *JobListOptions) Normalize() {
	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "desc"
	}
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
