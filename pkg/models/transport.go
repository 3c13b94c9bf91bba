package models

// URLClassificationRequest asks the service to fetch and classify a remote image.
type URLClassificationRequest struct {
	URL      string `json:"url" binding:"required,url"`
	Detailed bool   `json:"detailed,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ClassificationResponse is the JSON body returned for a single image.
// DetectedAngle is rounded to two decimals and is null when no angle was found.
type ClassificationResponse struct {
	RequestID        string               `json:"request_id,omitempty"`
	Source           string               `json:"source,omitempty"`
	DetectedAngle    *float64             `json:"detected_angle_degrees"`
	PredictedLetter  Label                `json:"predicted_letter"`
	Error            string               `json:"error,omitempty"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	Diagnostics      *PipelineDiagnostics `json:"diagnostics,omitempty"`
}

// BatchItemResponse is one entry of a batch classification.
type BatchItemResponse struct {
	Filename string                  `json:"filename"`
	Result   *ClassificationResponse `json:"result,omitempty"`
	Error    *ErrorResponse          `json:"error,omitempty"`
}

// BatchResponse is the JSON body returned by the batch endpoint.
type BatchResponse struct {
	RequestID string              `json:"request_id"`
	Count     int                 `json:"count"`
	Items     []BatchItemResponse `json:"items"`
}
