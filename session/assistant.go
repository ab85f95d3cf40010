package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/classifier"
	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/dialog"
	"github.com/room4-2/tablefinder/gemini"
	"github.com/room4-2/tablefinder/messages"
	"github.com/room4-2/tablefinder/restaurant"
)

// NewAssistant loads the catalogue and rules named by cfg and builds the
// classifier chain.
func NewAssistant(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Assistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogue, err := restaurant.LoadFile(cfg.CataloguePath)
	if err != nil {
		return nil, err
	}
	rules, err := restaurant.LoadRulesFile(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	logger.Info("📚 Catalogue loaded",
		zap.String("path", cfg.CataloguePath),
		zap.Int("restaurants", len(catalogue)),
		zap.Strings("requirements", rules.Names()),
	)

	model, err := buildClassifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	phrasing, err := messages.NewRegistry()
	if err != nil {
		return nil, err
	}

	return &Assistant{
		Machine: dialog.NewMachine(catalogue, rules, dialog.Options{
			AllowRestart: cfg.AllowRestart,
			MaxDistance:  cfg.LevenshteinDistance,
		}),
		Classifier: classifier.AsClassifier(model),
		Phrasing:   phrasing,
		Style:      messages.Style{Formal: cfg.Formal, Caps: cfg.Caps},
	}, nil
}

// buildClassifier chains Gemini (with an API key), naive Bayes (with a
// dataset) and the keyword baseline, in that order.
func buildClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (classifier.Model, error) {
	keywords, err := classifier.DefaultKeywordRules()
	if err != nil {
		return nil, err
	}
	keyword := classifier.NewKeyword(keywords, dialog.ActInform.String())

	var models []classifier.Model
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		models = append(models, classifier.NewGemini(client))
		logger.Info("🤖 Gemini classifier enabled", zap.String("model", client.Model()))
	}

	if cfg.DatasetPath != "" {
		samples, err := classifier.LoadDatasetFile(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		bayes := classifier.NewNaiveBayes()
		if err := bayes.Train(samples); err != nil {
			return nil, fmt.Errorf("failed to train %s: %w", bayes.Name(), err)
		}
		if err := keyword.Train(samples); err != nil {
			return nil, fmt.Errorf("failed to train %s: %w", keyword.Name(), err)
		}
		models = append(models, bayes)
		logger.Info("🧮 Naive Bayes classifier trained",
			zap.String("path", cfg.DatasetPath),
			zap.Int("samples", len(samples)),
		)
	}

	if len(models) == 0 {
		return keyword, nil
	}
	return classifier.NewFallback(logger, append(models, keyword)...), nil
}
