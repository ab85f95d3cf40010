package classifier

import (
	"context"
	"fmt"

	"github.com/room4-2/tablefinder/dialog"
)

// Labeler picks one label for a text. *gemini.Client implements it.
type Labeler interface {
	Label(ctx context.Context, text string, labels []string) (string, error)
}

// DatasetOnlyLabels are labels found in dialog act corpora that the
// dialog itself does not act on.
var DatasetOnlyLabels = []string{"repeat", "reqmore"}

// Gemini delegates labelling to a language model restricted to the act
// labels.
type Gemini struct {
	labeler Labeler
	labels  []string
}

// NewGemini returns a Gemini classifier over every dialog act plus
// DatasetOnlyLabels.
func NewGemini(labeler Labeler) *Gemini {
	var labels []string
	for _, a := range dialog.Acts() {
		labels = append(labels, a.String())
	}
	labels = append(labels, DatasetOnlyLabels...)
	return &Gemini{labeler: labeler, labels: labels}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Predict(ctx context.Context, utterance string) (string, error) {
	label, err := g.labeler.Label(ctx, utterance, g.labels)
	if err != nil {
		return "", fmt.Errorf("failed to classify utterance: %w", err)
	}
	return label, nil
}
