package dialog

import (
	"strings"

	"github.com/room4-2/tablefinder/preference"
	"github.com/room4-2/tablefinder/restaurant"
)

// DefaultRestartPhrases restart the dialog when typed on their own.
var DefaultRestartPhrases = []string{"restart", "start over", "reset"}

// Options configures a Machine.
type Options struct {
	// AllowRestart enables the restart act and phrases.
	AllowRestart bool
	// MaxDistance is the edit distance passed to the preference matcher.
	// 0 selects the dynamic threshold.
	MaxDistance int
	// RestartPhrases defaults to DefaultRestartPhrases.
	RestartPhrases []string
}

// Machine drives conversations over one catalogue. It holds no
// per-conversation state and is safe for concurrent use.
type Machine struct {
	catalogue []restaurant.Restaurant
	rules     restaurant.Ruleset
	extractor *preference.Extractor
	opts      Options
}

// NewMachine returns a Machine whose slot options come from the catalogue
// and the rule names.
func NewMachine(catalogue []restaurant.Restaurant, rules restaurant.Ruleset, opts Options) *Machine {
	if opts.RestartPhrases == nil {
		opts.RestartPhrases = DefaultRestartPhrases
	}
	return &Machine{
		catalogue: catalogue,
		rules:     rules,
		extractor: preference.NewExtractor(restaurant.Schema(catalogue, rules), opts.MaxDistance),
		opts:      opts,
	}
}

// Start returns a fresh conversation and its welcome message.
func (m *Machine) Start() (Conversation, Reply) {
	return NewConversation(), Reply{
		Messages: []Message{{Key: MsgWelcome}},
		Path:     []State{Welcome},
	}
}

// Advance applies one classified user utterance to c.
//
// Utterances the machine cannot use leave the state unchanged and re-prompt.
// The error is non-nil only for broken configuration, such as a rule too long
// to explain.
func (m *Machine) Advance(c Conversation, act Act, utterance string) (Conversation, Reply, error) {
	t := &turn{m: m, c: c, utterance: strings.ToLower(strings.TrimSpace(utterance))}
	err := t.run(act)
	return t.c, t.reply, err
}

// RestartAllowed reports whether conversations may be restarted.
func (m *Machine) RestartAllowed() bool { return m.opts.AllowRestart }

func (m *Machine) isRestartPhrase(utterance string) bool {
	for _, p := range m.opts.RestartPhrases {
		if utterance == p {
			return true
		}
	}
	return false
}

// turn accumulates the effects of a single Advance call.
type turn struct {
	m         *Machine
	c         Conversation
	utterance string
	reply     Reply
}

func (t *turn) enter(s State) {
	t.c.State = s
	t.reply.Path = append(t.reply.Path, s)
}

func (t *turn) say(key MessageKey, bindings map[string]string) {
	t.reply.Messages = append(t.reply.Messages, Message{Key: key, Bindings: bindings})
}

func (t *turn) run(act Act) error {
	if act == ActBye || act == ActThankYou {
		t.enter(Exit)
		t.say(MsgGoodbye, nil)
		return nil
	}
	if t.m.opts.AllowRestart && (act == ActRestart || t.m.isRestartPhrase(t.utterance)) {
		t.c = NewConversation()
		t.enter(Welcome)
		t.say(MsgWelcome, nil)
		return nil
	}

	switch t.c.State {
	case Welcome:
		switch act {
		case ActHello:
		case ActInform:
			t.merge()
		default:
			t.reprompt()
			return nil
		}
		return t.ladder()

	case AskArea, AskCuisine:
		if act != ActInform {
			t.reprompt()
			return nil
		}
		t.merge()
		t.enter(Welcome)
		return t.ladder()

	case AskAdditionalPreferences:
		// A plain "no" means nothing further is required.
		if act != ActInform && act != ActNegate && act != ActDeny {
			t.reprompt()
			return nil
		}
		t.merge()
		p := t.c.Preferences
		if !p.PriceRange.IsSet() {
			p.PriceRange = preference.Any()
		}
		if !p.Requirement.IsSet() {
			p.Requirement = preference.Any()
		}
		t.c.Preferences = p
		t.enter(Welcome)
		return t.ladder()

	case MakeSuggestion:
		return t.suggestion(act)

	case GiveInformation:
		if act != ActRequest {
			t.enter(Exit)
			t.say(MsgGoodbye, nil)
			return nil
		}
		t.answer()
	}
	return nil
}

// merge folds the preferences found in the utterance into the conversation.
func (t *turn) merge() {
	t.c.Preferences = t.c.Preferences.Merge(t.m.extractor.Extract(t.utterance))
}

// ladder asks for the first missing preference, or suggests a restaurant
// once everything is known.
func (t *turn) ladder() error {
	p := t.c.Preferences
	switch {
	case !p.Area.IsSet():
		t.enter(AskArea)
		t.say(MsgAskArea, nil)
	case !p.Cuisine.IsSet():
		t.enter(AskCuisine)
		t.say(MsgAskCuisine, nil)
	case !p.Complete():
		t.enter(AskAdditionalPreferences)
		t.say(MsgAskAdditional, nil)
	default:
		t.enter(MakeSuggestion)
		return t.refilter()
	}
	return nil
}

func (t *turn) reprompt() {
	switch t.c.State {
	case Welcome:
		t.say(MsgWelcome, nil)
	case AskArea:
		t.say(MsgAskArea, nil)
	case AskCuisine:
		t.say(MsgAskCuisine, nil)
	case AskAdditionalPreferences:
		t.say(MsgAskAdditional, nil)
	case GiveInformation:
		t.say(MsgAnythingElse, nil)
	}
}
