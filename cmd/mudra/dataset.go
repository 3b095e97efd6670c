package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

var (
	collectCSV string

	trainCSV string
	trainK   int
	trainOut string

	exportOut string
)

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <dir>",
		Short: "Extract landmark samples from <dir>/<Label>/*.png|jpg",
		Args:  cobra.ExactArgs(1),
		RunE:  runCollectCmd,
	}
	cmd.Flags().StringVar(&collectCSV, "csv", "", "also write the collected samples to this CSV file")
	return cmd
}

func runCollectCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	det, err := openDetector(cfg)
	if err != nil {
		return err
	}
	defer closeDetector(ctx, det)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, st)

	res, err := dataset.NewCollector(det, nil).Collect(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to collect samples: %w", err)
	}
	if len(res.Samples) > 0 {
		if err := st.Samples().CreateBatch(res.Samples); err != nil {
			return fmt.Errorf("failed to store samples: %w", err)
		}
	}

	if collectCSV != "" {
		if err := writeSamplesCSV(collectCSV, res.Samples); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	printCounts(out, res.Counts())
	fmt.Fprintf(out, "stored %d samples, skipped %d images\n", len(res.Samples), res.Skipped)
	for _, dir := range res.Ignored {
		fmt.Fprintf(out, "ignored directory %q\n", dir)
	}
	return nil
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the kNN gesture model from collected samples",
		Args:  cobra.NoArgs,
		RunE:  runTrainCmd,
	}
	cmd.Flags().StringVar(&trainCSV, "csv", "", "read samples from this CSV file instead of the database")
	cmd.Flags().IntVar(&trainK, "k", gesture.DefaultK, "neighbours consulted per prediction")
	cmd.Flags().StringVar(&trainOut, "out", "", "model output path (default model_path)")
	return cmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.Named("train")

	samples, err := loadTrainingSamples(cfg.DBPath)
	if err != nil {
		return err
	}

	trainer := gesture.NewTrainer(trainK, gesture.DefaultSeed)
	split, err := trainer.Split(samples)
	if err != nil {
		return err
	}
	log.Info(ctx, "dataset split",
		logger.Int("train", len(split.Train)),
		logger.Int("validation", len(split.Validation)),
		logger.Int("test", len(split.Test)))

	model, err := trainer.Fit(split.Train)
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "validation")
	fmt.Fprint(out, gesture.Evaluate(model, split.Validation))
	fmt.Fprintln(out, "\ntest")
	fmt.Fprint(out, gesture.Evaluate(model, split.Test))

	path := trainOut
	if path == "" {
		path = cfg.ModelPath
	}
	if err := model.Save(path); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	fmt.Fprintf(out, "\nmodel written to %s\n", path)
	return nil
}

func loadTrainingSamples(dbPath string) ([]gesture.Sample, error) {
	if trainCSV != "" {
		f, err := os.Open(trainCSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dataset.ReadCSV(f)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	rows, err := st.Samples().List("")
	if err != nil {
		return nil, err
	}
	return dataset.FromStore(rows)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored samples as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, st)

	rows, err := st.Samples().List("")
	if err != nil {
		return err
	}
	if exportOut != "" {
		return writeSamplesCSV(exportOut, rows)
	}
	samples, err := dataset.FromStore(rows)
	if err != nil {
		return err
	}
	return dataset.WriteCSV(cmd.OutOrStdout(), samples)
}

func writeSamplesCSV(path string, rows []*store.Sample) error {
	samples, err := dataset.FromStore(rows)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func printCounts(w io.Writer, counts map[string]int) {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(w, "%-10s %d\n", label, counts[label])
	}
}
