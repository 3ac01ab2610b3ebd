package model

// Queue priority tags, spec.md §6 ("Queue tagging"). Lower sorts first in
// internal/pqueue.Queue.
const (
	// RegTagVIP and RegTagOrdinary order the registration queue: a VIP
	// request is taken before any pending ordinary request.
	RegTagVIP      = 1
	RegTagOrdinary = 2

	// TriageTag is the registration queue's only forwarding tag.
	TriageTag = 1
)
