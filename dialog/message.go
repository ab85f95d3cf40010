package dialog

// MessageKey identifies a system utterance. The presentation layer maps each
// key to a phrasing template.
type MessageKey int

const (
	MsgWelcome MessageKey = iota
	MsgAskArea
	MsgAskCuisine
	MsgAskAdditional
	MsgSuggestion
	MsgExplanation
	MsgNoMatch
	MsgRepeatPrevious
	MsgNoBetterAlternative
	MsgMoreInfo
	MsgPhone
	MsgAddress
	MsgPostcode
	MsgNotUnderstood
	MsgAnythingElse
	MsgGoodbye
)

var messageNames = [...]string{
	MsgWelcome:             "welcome",
	MsgAskArea:             "ask_area",
	MsgAskCuisine:          "ask_cuisine",
	MsgAskAdditional:       "ask_additional",
	MsgSuggestion:          "suggestion",
	MsgExplanation:         "explanation",
	MsgNoMatch:             "no_match",
	MsgRepeatPrevious:      "repeat_previous",
	MsgNoBetterAlternative: "no_better_alternative",
	MsgMoreInfo:            "more_info",
	MsgPhone:               "phone",
	MsgAddress:             "address",
	MsgPostcode:            "postcode",
	MsgNotUnderstood:       "not_understood",
	MsgAnythingElse:        "anything_else",
	MsgGoodbye:             "goodbye",
}

func (k MessageKey) String() string {
	if k < 0 || int(k) >= len(messageNames) {
		return "unknown"
	}
	return messageNames[k]
}

// MessageKeys returns every key in declaration order.
func MessageKeys() []MessageKey {
	keys := make([]MessageKey, len(messageNames))
	for i := range messageNames {
		keys[i] = MessageKey(i)
	}
	return keys
}

// Message is a key plus the placeholder values to substitute.
type Message struct {
	Key      MessageKey
	Bindings map[string]string
}

// Reply is everything one call to Advance produced.
type Reply struct {
	Messages []Message
	// Path lists the states entered during the call, in order.
	Path []State
}

// Keys returns the message keys of the reply.
func (r Reply) Keys() []MessageKey {
	keys := make([]MessageKey, len(r.Messages))
	for i, m := range r.Messages {
		keys[i] = m.Key
	}
	return keys
}
