package dialog

// State is a node of the conversation.
type State int

const (
	Welcome State = iota
	AskArea
	AskCuisine
	AskAdditionalPreferences
	MakeSuggestion
	GiveInformation
	Exit
)

var stateNames = [...]string{
	Welcome:                  "welcome",
	AskArea:                  "ask_area",
	AskCuisine:               "ask_cuisine",
	AskAdditionalPreferences: "ask_additional_preferences",
	MakeSuggestion:           "make_suggestion",
	GiveInformation:          "give_information",
	Exit:                     "exit",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the conversation is over.
func (s State) Terminal() bool { return s == Exit }
