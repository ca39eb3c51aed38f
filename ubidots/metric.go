package ubidots

import "sync/atomic"

// Metrics contains atomic counters for a Client.
type Metrics struct {
	// UploadCount indicates the number of values accepted by the API.
	UploadCount atomic.Uint64
	// UploadErrCount indicates the number of failed single value uploads.
	UploadErrCount atomic.Uint64
	// CollectionCount indicates the number of collections accepted by the API.
	CollectionCount atomic.Uint64
	// CollectionErrCount indicates the number of failed collection uploads.
	CollectionErrCount atomic.Uint64
}

func (m *Metrics) incUploadCount() {
	m.UploadCount.Add(1)
}

func (m *Metrics) incUploadErrCount() {
	m.UploadErrCount.Add(1)
}

func (m *Metrics) incCollectionCount() {
	m.CollectionCount.Add(1)
}

func (m *Metrics) incCollectionErrCount() {
	m.CollectionErrCount.Add(1)
}
