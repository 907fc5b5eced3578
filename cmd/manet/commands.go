package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/rand"

	"manet/internal/models"
	"manet/pkg/bbox"
	"manet/pkg/candidates"
	"manet/pkg/froc"
	"manet/pkg/imageio"
	"manet/pkg/mask"
	"manet/pkg/ndarray"
	"manet/pkg/patch"
	"manet/pkg/visualization"
)

// readList reads a case list file
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list: %w", err)
	}
	defer f.Close()
	return candidates.ReadList(f)
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid integer list %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runPeaks(args []string) error {
	fs := flag.NewFlagSet("peaks", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Configuration file")
	list := fs.String("list", "", "File with one case id per line")
	root := fs.String("path", ".", "Directory containing one folder per case")
	input := fs.String("input", "prediction.png", "Probability map filename inside each case folder")
	output := fs.String("output", "prediction.csv", "Candidate filename written to each case folder")
	numCores := fs.Int("cores", 0, "Number of cases processed concurrently (default: from config)")
	fs.Parse(args)

	if *list == "" {
		fs.Usage()
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}

	ids, err := readList(*list)
	if err != nil {
		return err
	}
	cases := make([]models.Case, len(ids))
	for i, id := range ids {
		cases[i] = models.Case{ID: id, ImagePath: filepath.Join(*root, id, *input)}
	}

	runner, err := candidates.NewRunner(candidates.Params{
		NumCores:    cfg.Processing.NumCores,
		MinDistance: cfg.Peaks.MinDistance,
		Thresholds:  candidates.Thresholds(cfg.Peaks.ThresholdMin, cfg.Peaks.ThresholdMax, cfg.Peaks.ThresholdSteps),
		Verbose:     cfg.Output.Verbose,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Detecting candidates in %d cases on %d cores...\n", len(cases), cfg.Processing.NumCores)
	startTime := time.Now()
	results := runner.Run(ctx, cases, imageio.Load)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		out := filepath.Join(*root, res.Case.ID, *output)
		if err := candidates.SaveCSV(out, res.Candidates); err != nil {
			fmt.Printf("Warning: Failed to write candidates of case %s: %v\n", res.Case.ID, err)
			failed++
		}
	}

	fmt.Printf("Processed %d cases in %.2f seconds, %d failed\n",
		len(cases), time.Since(startTime).Seconds(), failed)
	if failed == len(cases) && len(cases) > 0 {
		return errors.New("all cases failed")
	}
	return nil
}

func runFROC(args []string) error {
	fs := flag.NewFlagSet("froc", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Configuration file")
	positivesPath := fs.String("positives", "", "List of positive case ids")
	normalsPath := fs.String("normals", "", "List of normal case ids")
	root := fs.String("path", ".", "Directory containing one folder per case")
	pred := fs.String("pred", "prediction.csv", "Candidate filename inside each case folder")
	gtr := fs.String("gt", "gt.txt", "Ground-truth filename inside each positive case folder")
	output := fs.String("output", "froc.json", "Output JSON file")
	fs.Parse(args)

	if *positivesPath == "" || *normalsPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)

	positiveIDs, err := readList(*positivesPath)
	if err != nil {
		return err
	}
	normalIDs, err := readList(*normalsPath)
	if err != nil {
		return err
	}

	fmt.Println("Parsing all normals.")
	normals := make([]models.CaseCandidates, len(normalIDs))
	for i, id := range normalIDs {
		if normals[i], err = candidates.LoadCSV(filepath.Join(*root, id, *pred), id); err != nil {
			return err
		}
	}

	fmt.Println("Parsing all positives.")
	positives := make([]models.CaseCandidates, len(positiveIDs))
	for i, id := range positiveIDs {
		if positives[i], err = candidates.LoadCSV(filepath.Join(*root, id, *pred), id); err != nil {
			return err
		}
	}

	fmt.Println("Parsing all ground truths.")
	gts := make([][][]float64, len(positiveIDs))
	for i, id := range positiveIDs {
		lines, err := readList(filepath.Join(*root, id, *gtr))
		if err != nil {
			return err
		}
		if len(lines) < 2 {
			return fmt.Errorf("ground truth of case %s has no point line", id)
		}
		if gts[i], err = froc.ParsePoints(lines[1]); err != nil {
			return fmt.Errorf("ground truth of case %s: %w", id, err)
		}
	}

	fmt.Printf("Computing froc and saving to %s\n", *output)
	grid := candidates.Thresholds(cfg.Peaks.ThresholdMin, cfg.Peaks.ThresholdMax, cfg.Peaks.ThresholdSteps)
	curve, err := froc.Compute(positives, gts, normals, grid, cfg.FROC.Distance)
	if err != nil {
		return err
	}
	return curve.WriteJSON(*output)
}

func runBBox(args []string) error {
	fs := flag.NewFlagSet("bbox", flag.ExitOnError)
	maskPath := fs.String("mask", "", "Mask image")
	fs.Parse(args)

	if *maskPath == "" {
		fs.Usage()
		os.Exit(1)
	}
	m, err := imageio.LoadMask(*maskPath)
	if err != nil {
		return err
	}
	box, err := mask.BoundingBox(m)
	if err != nil {
		return err
	}
	fmt.Println(box)
	return nil
}

func runPatch(args []string) error {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Configuration file")
	imagePath := fs.String("image", "", "Input image")
	maskPath := fs.String("mask", "", "Sample the patch around a random mask voxel instead of -bbox")
	boxFlag := fs.String("bbox", "", "Box as row,col,height,width")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed for mask sampling")
	output := fs.String("output", "patch.png", "Output image")
	fs.Parse(args)

	if *imagePath == "" || (*boxFlag == "" && *maskPath == "") {
		fs.Usage()
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)

	img, err := imageio.Load(*imagePath)
	if err != nil {
		return err
	}

	var p *ndarray.Array
	if *maskPath != "" {
		m, err := imageio.LoadMask(*maskPath)
		if err != nil {
			return err
		}
		sample, err := patch.NewSampler(rand.NewSource(*seed)).SampleAroundMask(img, m, cfg.Patch.Size, cfg.Patch.PadValue)
		if err != nil {
			return err
		}
		fmt.Printf("Sampled box: %v\n", sample.Box)
		p = sample.Image
	} else {
		flat, err := parseInts(*boxFlag)
		if err != nil {
			return err
		}
		box, err := bbox.Split(flat)
		if err != nil {
			return err
		}
		if p, err = patch.Extract(img, box, cfg.Patch.PadValue); err != nil {
			return err
		}
	}

	if err := imageio.Save(*output, p); err != nil {
		return err
	}
	fmt.Printf("Patch saved to: %s\n", *output)
	return nil
}

func runOverlay(args []string) error {
	fs := flag.NewFlagSet("overlay", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Configuration file")
	imagePath := fs.String("image", "", "Input image")
	maskPath := fs.String("mask", "", "Optional mask image whose contour is drawn")
	drawBBox := fs.Bool("bbox", false, "Draw the bounding box of the mask")
	predPath := fs.String("pred", "", "Optional candidate CSV whose peaks are drawn")
	threshold := fs.Float64("threshold", 0.5, "Draw the candidates found at the threshold closest to this value")
	output := fs.String("output", "output.png", "Output image")
	fs.Parse(args)

	if *imagePath == "" {
		fs.Usage()
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)

	img, err := imageio.Load(*imagePath)
	if err != nil {
		return err
	}
	ov, err := visualization.NewOverlay(img, visualization.Style{
		MaskColor:  cfg.Overlay.MaskColor,
		MaskAlpha:  cfg.Overlay.MaskAlpha,
		BBoxColor:  cfg.Overlay.BBoxColor,
		PeakColor:  cfg.Overlay.PeakColor,
		PeakRadius: cfg.Overlay.PeakRadius,
	})
	if err != nil {
		return err
	}

	if *maskPath != "" {
		m, err := imageio.LoadMask(*maskPath)
		if err != nil {
			return err
		}
		if err := ov.DrawMask(m); err != nil {
			return err
		}
		if *drawBBox {
			box, err := mask.BoundingBox(m)
			if err != nil {
				return err
			}
			if err := ov.DrawBBox(box); err != nil {
				return err
			}
		}
	}

	if *predPath != "" {
		cc, err := candidates.LoadCSV(*predPath, "")
		if err != nil {
			return err
		}
		if err := ov.DrawPeaks(peaksNear(cc, *threshold)); err != nil {
			return err
		}
	}

	if err := ov.Save(*output); err != nil {
		return err
	}
	fmt.Printf("Overlay saved to: %s\n", *output)
	return nil
}

// peaksNear returns the peaks recorded at the threshold closest to thr
func peaksNear(cc models.CaseCandidates, thr float64) [][]int {
	thrs := cc.Thresholds()
	if len(thrs) == 0 {
		return nil
	}
	best := thrs[0]
	for _, t := range thrs[1:] {
		if math.Abs(t-thr) < math.Abs(best-thr) {
			best = t
		}
	}
	var peaks [][]int
	for _, c := range cc.Candidates {
		if c.Threshold == best {
			peaks = append(peaks, []int{c.Row, c.Col})
		}
	}
	return peaks
}
