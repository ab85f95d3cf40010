package dialog

import (
	"github.com/room4-2/tablefinder/preference"
	"github.com/room4-2/tablefinder/restaurant"
)

// Conversation is the state of one dialog. It is a value: Advance returns
// the next Conversation and leaves the given one untouched.
type Conversation struct {
	State       State
	Preferences preference.Preferences
	Chosen      *restaurant.Restaurant
	// Previous is the suggestion made before Chosen.
	Previous *restaurant.Restaurant
	// Candidates left from the last filter pass; suggestions take from the end.
	Candidates []restaurant.Restaurant
	// Suggested names every restaurant offered since the candidates were
	// last exhausted.
	Suggested []string
}

// NewConversation returns a conversation at the welcome state.
func NewConversation() Conversation {
	return Conversation{State: Welcome}
}

// Done reports whether the conversation reached the exit state.
func (c Conversation) Done() bool { return c.State.Terminal() }
