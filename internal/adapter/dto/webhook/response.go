package webhook

// AcceptedResponse acknowledges an admitted delivery before the pipeline runs
type AcceptedResponse struct {
	Received   bool   `json:"received"`
	DeliveryID string `json:"deliveryId"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

// StatusResponse reports the processing status of a delivery
type StatusResponse struct {
	DeliveryID string `json:"deliveryId"`
	Processed  bool   `json:"processed"`
	State      string `json:"state,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// RetryResponse reports the outcome of a dead-letter replay
type RetryResponse struct {
	DeliveryID string `json:"deliveryId"`
	DerivedID  string `json:"derivedId"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}
