// Package classifier assigns dialog act labels to user utterances.
//
// Models work on raw label strings so they can be scored against labelled
// data that uses acts the dialog does not act on (repeat, reqmore). Use
// AsClassifier to plug a Model into a dialog.
package classifier

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/room4-2/tablefinder/dialog"
)

// ErrNotTrained is returned by models predicting before Train.
var ErrNotTrained = errors.New("classifier is not trained")

// Model predicts the dialog act label of one lower-cased utterance.
type Model interface {
	Name() string
	Predict(ctx context.Context, utterance string) (string, error)
}

// Trainer is a Model that learns from labelled samples.
type Trainer interface {
	Model
	Train(samples []Sample) error
}

// AsClassifier adapts m to dialog.Classifier. Labels outside the act set
// become dialog.ActNull.
func AsClassifier(m Model) dialog.Classifier {
	return actClassifier{m}
}

type actClassifier struct {
	m Model
}

func (a actClassifier) Classify(ctx context.Context, utterance string) (dialog.Act, error) {
	label, err := a.m.Predict(ctx, utterance)
	if err != nil {
		return dialog.ActNull, err
	}
	return dialog.ParseAct(label), nil
}

// Fallback asks each model in turn and returns the first answer.
type Fallback struct {
	models []Model
	logger *zap.Logger
}

// NewFallback chains models. Put the model that cannot fail last.
func NewFallback(logger *zap.Logger, models ...Model) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{models: models, logger: logger}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) Predict(ctx context.Context, utterance string) (string, error) {
	var errs []error
	for _, m := range f.models {
		label, err := m.Predict(ctx, utterance)
		if err == nil {
			return label, nil
		}
		f.logger.Warn("⚠️ Classifier failed, trying next", zap.String("model", m.Name()), zap.Error(err))
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNotTrained
	}
	return "", errors.Join(errs...)
}
