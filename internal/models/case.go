package models

// Case is one image to run candidate detection on
type Case struct {
	// ID names the case; it becomes the output sub-directory
	ID string `json:"id"`

	// ImagePath is the probability map or image of the case
	ImagePath string `json:"imagePath"`

	// MaskPath is the optional ground-truth mask of the case
	MaskPath string `json:"maskPath,omitempty"`
}

// Candidate is one detected peak at a given threshold
type Candidate struct {
	// Threshold is the detection threshold that produced the peak
	Threshold float64 `json:"thr"`

	// Row and Col are the peak position in pixels
	Row int `json:"row"`
	Col int `json:"col"`
}

// Point returns the candidate position as a float point
func (c Candidate) Point() []float64 {
	return []float64{float64(c.Row), float64(c.Col)}
}

// CaseCandidates holds every candidate of a case across all thresholds
type CaseCandidates struct {
	CaseID     string      `json:"caseId"`
	Candidates []Candidate `json:"candidates"`
}

// AtThreshold returns the candidate points found at exactly thr
func (c CaseCandidates) AtThreshold(thr float64) [][]float64 {
	var pts [][]float64
	for _, cand := range c.Candidates {
		if cand.Threshold == thr {
			pts = append(pts, cand.Point())
		}
	}
	return pts
}

// Thresholds returns the distinct thresholds in order of first appearance
func (c CaseCandidates) Thresholds() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, cand := range c.Candidates {
		if !seen[cand.Threshold] {
			seen[cand.Threshold] = true
			out = append(out, cand.Threshold)
		}
	}
	return out
}

// CaseResult is the outcome of processing one case in a batch.
// Exactly one of Candidates and Err is meaningful.
type CaseResult struct {
	Case       Case
	Candidates CaseCandidates
	Err        error
}
