package crawler

// ItemFailure records one work item that could not be processed in a cycle.
type ItemFailure struct {
	ItemID string
	Err    error
}

// CycleResult is what one poller invocation reports back: which items were
// processed and which failed. A failed item never stops the batch; it is
// retried (or not) by row state on a later cycle.
type CycleResult struct {
	Succeeded []string
	Failed    []ItemFailure
}

func (r *CycleResult) ok(itemID string) {
	r.Succeeded = append(r.Succeeded, itemID)
}

func (r *CycleResult) fail(itemID string, err error) {
	r.Failed = append(r.Failed, ItemFailure{ItemID: itemID, Err: err})
}
