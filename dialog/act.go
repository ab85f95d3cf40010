// Package dialog implements the restaurant recommendation dialog: the states
// of a conversation and how a classified user act moves between them.
package dialog

import (
	"context"
	"strings"
)

// Act is the dialog act a classifier assigns to one user utterance.
type Act int

const (
	ActNull Act = iota
	ActHello
	ActInform
	ActRequest
	ActReqAlts
	ActAck
	ActAffirm
	ActBye
	ActThankYou
	ActRestart
	ActNegate
	ActDeny
	ActConfirm
)

var actNames = [...]string{
	ActNull:     "null",
	ActHello:    "hello",
	ActInform:   "inform",
	ActRequest:  "request",
	ActReqAlts:  "reqalts",
	ActAck:      "ack",
	ActAffirm:   "affirm",
	ActBye:      "bye",
	ActThankYou: "thankyou",
	ActRestart:  "restart",
	ActNegate:   "negate",
	ActDeny:     "deny",
	ActConfirm:  "confirm",
}

func (a Act) String() string {
	if a < 0 || int(a) >= len(actNames) {
		return actNames[ActNull]
	}
	return actNames[a]
}

// ParseAct maps a label to an Act. Unknown labels become ActNull.
func ParseAct(label string) Act {
	label = strings.ToLower(strings.TrimSpace(label))
	for i, name := range actNames {
		if name == label {
			return Act(i)
		}
	}
	return ActNull
}

// Acts returns every act in declaration order.
func Acts() []Act {
	acts := make([]Act, len(actNames))
	for i := range actNames {
		acts[i] = Act(i)
	}
	return acts
}

// Classifier assigns a dialog act to an utterance.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Act, error)
}
