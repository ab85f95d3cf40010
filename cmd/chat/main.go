// Command chat runs the restaurant assistant in the terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/session"
)

var (
	formal    bool
	caps      bool
	restart   bool
	debug     bool
	delay     time.Duration
	catalogue string
	rules     string
	dataset   string
	distance  int
	offline   bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Find a restaurant in Cambridge by chatting in the terminal",
	Long: `Chat with the restaurant assistant. Tell it the area, the kind of food and
the price range you have in mind, plus an optional requirement such as
"romantic" or "touristic". Ask for the phone number, address or postcode of a
suggestion, and say goodbye to leave.`,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&formal, "formal", true, "use formal phrasing")
	f.BoolVar(&caps, "caps", false, "print replies in capitals")
	f.BoolVar(&restart, "restart", false, "allow restarting the conversation")
	f.BoolVar(&debug, "debug", false, "print the classified act and state after each turn")
	f.DurationVar(&delay, "delay", 0, "pause before each reply")
	f.StringVar(&catalogue, "catalogue", "", "restaurant CSV (overrides CATALOGUE_PATH)")
	f.StringVar(&rules, "rules", "", "implication rules YAML (overrides RULES_PATH)")
	f.StringVar(&dataset, "dataset", "", "labelled dialog acts to train the naive Bayes classifier (overrides DATASET_PATH)")
	f.IntVar(&distance, "distance", 0, "maximum edit distance, 0 for length based (overrides LEVENSHTEIN_DISTANCE)")
	f.BoolVar(&offline, "offline", false, "use the keyword classifier even when GEMINI_API_KEY is set")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger := zap.NewNop()
	if debug {
		if logger, err = cfg.NewLogger(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	assistant, err := session.NewAssistant(ctx, cfg, logger)
	if err != nil {
		return err
	}
	d := session.NewDialogue("terminal", assistant, cfg.MaxTranscriptTurns, logger)

	return converse(ctx, d, cmd.InOrStdin(), cmd.OutOrStdout(), delay, debug)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("formal") {
		cfg.Formal = formal
	}
	if f.Changed("caps") {
		cfg.Caps = caps
	}
	if f.Changed("restart") {
		cfg.AllowRestart = restart
	}
	if f.Changed("distance") {
		cfg.LevenshteinDistance = distance
	}
	if catalogue != "" {
		cfg.CataloguePath = catalogue
	}
	if rules != "" {
		cfg.RulesPath = rules
	}
	if dataset != "" {
		cfg.DatasetPath = dataset
	}
	if offline {
		cfg.GeminiAPIKey = ""
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// converse reads one utterance per line until the conversation ends or in
// is exhausted.
func converse(ctx context.Context, d *session.Dialogue, in io.Reader, out io.Writer, delay time.Duration, debug bool) error {
	say := func(lines []string) {
		for _, line := range lines {
			if delay > 0 {
				time.Sleep(delay)
			}
			fmt.Fprintln(out, "system: "+line)
		}
	}

	say(d.Welcome())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		exchange, err := d.Handle(ctx, utterance)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "system: sorry, something went wrong (%v)\n", err)
			continue
		}
		if debug {
			fmt.Fprintf(out, "[%s -> %s]\n", exchange.Act, exchange.State)
		}
		say(exchange.Lines)

		if d.Done() {
			return nil
		}
	}
}
