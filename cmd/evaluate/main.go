// Command evaluate trains the dialog act classifiers on a labelled dataset
// and reports how well each one does on a held-out split.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/classifier"
	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/dialog"
	"github.com/room4-2/tablefinder/gemini"
)

var (
	datasetPath string
	testSize    float64
	seed        int64
	modelNames  []string
	perLabel    bool
)

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the dialog act classifiers on a labelled dataset",
	Long: `Reads a dataset with one "<act> <utterance>" pair per line, splits it into
a stratified train and test set, trains each selected model and prints its
accuracy, micro-averaged precision, recall and F1, and macro F1.

The gemini model needs GEMINI_API_KEY and is not trained.`,
	SilenceUsage: true,
	RunE:         runEvaluate,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&datasetPath, "dataset", "d", "", "labelled dialog acts file")
	f.Float64Var(&testSize, "test-size", 0.15, "fraction of each label held out for testing")
	f.Int64Var(&seed, "seed", 42, "shuffle seed")
	f.StringSliceVarP(&modelNames, "models", "m", []string{"majority", "keyword", "bayes"}, "models to evaluate (majority, keyword, bayes, gemini)")
	f.BoolVar(&perLabel, "per-label", false, "print scores for every label")
	_ = rootCmd.MarkFlagRequired("dataset")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if testSize <= 0 || testSize >= 1 {
		return fmt.Errorf("--test-size must be between 0 and 1, got %v", testSize)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	samples, err := classifier.LoadDatasetFile(datasetPath)
	if err != nil {
		return err
	}
	train, test := classifier.Split(samples, testSize, seed)
	logger.Info("📊 Dataset split",
		zap.String("path", datasetPath),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
	)

	models, err := buildModels(cmd.Context(), cfg, logger, modelNames)
	if err != nil {
		return err
	}

	reports := make([]classifier.Report, 0, len(models))
	for _, m := range models {
		if t, ok := m.(classifier.Trainer); ok {
			if err := t.Train(train); err != nil {
				return fmt.Errorf("failed to train %s: %w", m.Name(), err)
			}
		}
		report, err := classifier.Evaluate(cmd.Context(), m, test)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	return printReports(cmd.OutOrStdout(), reports, perLabel)
}

func buildModels(ctx context.Context, cfg *config.Config, logger *zap.Logger, names []string) ([]classifier.Model, error) {
	models := make([]classifier.Model, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "majority":
			models = append(models, classifier.NewMajority(""))
		case "keyword":
			rules, err := classifier.DefaultKeywordRules()
			if err != nil {
				return nil, err
			}
			models = append(models, classifier.NewKeyword(rules, dialog.ActInform.String()))
		case "bayes":
			models = append(models, classifier.NewNaiveBayes())
		case "gemini":
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
			if err != nil {
				return nil, err
			}
			models = append(models, classifier.NewGemini(client))
		default:
			return nil, fmt.Errorf("unknown model %q", name)
		}
	}
	return models, nil
}

func printReports(out io.Writer, reports []classifier.Report, perLabel bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tACCURACY\tPRECISION\tRECALL\tF1\tMACRO F1")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.Model, r.Accuracy, r.Precision, r.Recall, r.F1, r.MacroF1)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !perLabel {
		return nil
	}

	for _, r := range reports {
		fmt.Fprintf(out, "\n%s\n", r.Model)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LABEL\tPRECISION\tRECALL\tF1\tSUPPORT")
		for _, label := range r.Labels {
			s := r.PerLabel[label]
			fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\n", label, s.Precision, s.Recall, s.F1, s.Support)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
