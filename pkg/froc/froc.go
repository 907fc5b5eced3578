// Package froc scores candidate lists against ground-truth points with the
// free-response ROC: sensitivity against false positives per image.
package froc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"manet/internal/models"
	"manet/pkg/errs"
)

// Mode selects how hits on a case with several ground-truth points are counted.
type Mode int

const (
	// ModeRegion scores the fraction of ground-truth points that were hit.
	ModeRegion Mode = iota
	// ModeCase scores 1 if any ground-truth point was hit, else 0.
	ModeCase
)

func (m Mode) String() string {
	switch m {
	case ModeRegion:
		return "region"
	case ModeCase:
		return "case"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "region" and "case" to their Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "region":
		return ModeRegion, nil
	case "case":
		return ModeCase, nil
	}
	return 0, errs.Invalid("%q is not a valid mode", s)
}

// TPR returns the true positive rate of pred against gt. A ground-truth point
// counts as hit when some prediction lies within dist of it. Only 2D points are
// supported.
func TPR(pred, gt [][]float64, dist float64, mode Mode) (float64, error) {
	if mode != ModeRegion && mode != ModeCase {
		return 0, errs.Invalid("%v is not a valid mode", mode)
	}
	if len(gt) == 0 {
		return 0, errs.Invalid("ground truth is empty")
	}
	if err := check2D(pred, "predictions"); err != nil {
		return 0, err
	}
	if err := check2D(gt, "ground truth"); err != nil {
		return 0, err
	}

	hits := 0
	for _, g := range gt {
		for _, p := range pred {
			if floats.Distance(p, g, 2) <= dist {
				hits++
				break
			}
		}
	}

	if mode == ModeCase {
		if hits > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return float64(hits) / float64(len(gt)), nil
}

func check2D(pts [][]float64, name string) error {
	for _, p := range pts {
		if len(p) != 2 {
			return fmt.Errorf("%w: %s has %dD point %v, only 2D is supported",
				errs.ErrUnsupportedConfiguration, name, len(p), p)
		}
	}
	return nil
}

// Curve is a FROC curve sampled at the detection thresholds.
type Curve struct {
	Thresholds  []float64 `json:"thresholds"`
	Sensitivity []float64 `json:"sensitivity"`
	FPPerImage  []float64 `json:"fpPerImage"`
}

// Compute evaluates the FROC curve. positives[i] are the candidates of a
// positive case with ground-truth points gts[i]; normals are cases without
// findings, where every candidate is a false positive.
//
// The curve is sampled at thresholds, in the order given, so a threshold where
// no case has a candidate still shows as sensitivity 0 and no false positives.
// A nil thresholds samples every threshold that occurs in the inputs, in
// ascending order.
func Compute(positives []models.CaseCandidates, gts [][][]float64, normals []models.CaseCandidates, thresholds []float64, dist float64) (Curve, error) {
	if len(positives) != len(gts) {
		return Curve{}, errs.Invalid("%d positive cases but %d ground truths", len(positives), len(gts))
	}
	if len(positives) == 0 && len(normals) == 0 {
		return Curve{}, errs.Invalid("no cases to evaluate")
	}

	if thresholds == nil {
		thresholds = inputThresholds(positives, normals)
	}

	curve := Curve{
		Thresholds:  append([]float64(nil), thresholds...),
		Sensitivity: make([]float64, len(thresholds)),
		FPPerImage:  make([]float64, len(thresholds)),
	}
	for i, thr := range thresholds {
		if len(positives) > 0 {
			sum := 0.0
			for j, c := range positives {
				tpr, err := TPR(c.AtThreshold(thr), gts[j], dist, ModeRegion)
				if err != nil {
					return Curve{}, fmt.Errorf("case %s: %w", c.CaseID, err)
				}
				sum += tpr
			}
			curve.Sensitivity[i] = sum / float64(len(positives))
		}
		if len(normals) > 0 {
			fps := 0
			for _, c := range normals {
				fps += len(c.AtThreshold(thr))
			}
			curve.FPPerImage[i] = float64(fps) / float64(len(normals))
		}
	}
	return curve, nil
}

func inputThresholds(sets ...[]models.CaseCandidates) []float64 {
	seen := make(map[float64]bool)
	var thresholds []float64
	for _, set := range sets {
		for _, c := range set {
			for _, thr := range c.Thresholds() {
				if !seen[thr] {
					seen[thr] = true
					thresholds = append(thresholds, thr)
				}
			}
		}
	}
	sort.Float64s(thresholds)
	return thresholds
}

// WriteJSON saves the curve as indented JSON.
func (c Curve) WriteJSON(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshaling froc curve: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing froc curve: %w", err)
	}
	return nil
}

// ParsePoints reads a flat comma separated list "r0,c0,r1,c1,..." into 2D
// points.
func ParsePoints(s string) ([][]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields)%2 != 0 {
		return nil, errs.Invalid("point list %q has an odd number of values", s)
	}
	pts := make([][]float64, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		r, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		pts = append(pts, []float64{r, c})
	}
	return pts, nil
}
