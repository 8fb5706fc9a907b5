package metrics

import "time"

func (m *Metrics) DocumentIndexed(duplicate bool) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
	if duplicate {
		m.DuplicatesFlagged.Inc()
	}
}

func (m *Metrics) DocumentRejected(code string) {
	if m == nil {
		return
	}
	m.DocsRejectedTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) DocumentRemoved(policy string) {
	if m == nil {
		return
	}
	m.DocsRemovedTotal.WithLabelValues(policy).Inc()
}

// IndexSize publishes the current document and term counts.
func (m *Metrics) IndexSize(docs, terms int) {
	if m == nil {
		return
	}
	m.IndexDocCount.Set(float64(docs))
	m.IndexTermCount.Set(float64(terms))
}

// Query records one executed search. resultType is "hit", "zero_result" or
// an error code.
func (m *Metrics) Query(policy, resultType string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.WithLabelValues(policy).Observe(elapsed.Seconds())
	if resultType == "hit" || resultType == "zero_result" {
		m.SearchResultsCount.Observe(float64(results))
	}
}

func (m *Metrics) NoResults(count int) {
	if m == nil {
		return
	}
	m.NoResultRequests.Set(float64(count))
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedRequests.Inc()
}

func (m *Metrics) EventConsumed(op, outcome string) {
	if m == nil {
		return
	}
	m.EventsConsumedTotal.WithLabelValues(op, outcome).Inc()
}
