package models

import "time"

// ClassificationResult is the outcome of running one image through the
// extractor and the letter classifier.
type ClassificationResult struct {
	ID                string      `json:"id"`
	Source            string      `json:"source,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
	ProcessingTimeSec float64     `json:"processing_time_sec"`
	Orientation       Orientation `json:"-"`
	Label             Label       `json:"predicted_letter"`

	// Reason explains an absent angle ("No contour detected" or
	// "Degenerate contour geometry"). Empty when an angle was found.
	Reason string `json:"reason,omitempty"`

	Diagnostics *PipelineDiagnostics `json:"diagnostics,omitempty"`
}

// PipelineDiagnostics exposes intermediate values of the extraction pipeline.
type PipelineDiagnostics struct {
	Backend        string     `json:"backend"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	EdgePixels     int        `json:"edge_pixels"`
	ContourCount   int        `json:"contour_count"`
	SelectedIndex  int        `json:"selected_contour_index"`
	SelectedArea   float64    `json:"selected_contour_area"`
	SelectedPoints int        `json:"selected_contour_points"`
	Centroid       [2]float64 `json:"centroid,omitempty"`
	Eigenvalues    [2]float64 `json:"eigenvalues,omitempty"`
	RawAngle       float64    `json:"raw_angle_degrees,omitempty"`
}
