package dialog

import (
	"strings"

	"github.com/room4-2/tablefinder/preference"
)

var (
	infoFields     = []string{"phone", "address", "postcode"}
	infoBoundaries = []string{"number", "please", "of", "for"}
)

// answer replies to a request for the chosen restaurant's details.
func (t *turn) answer() {
	utterance := strings.ReplaceAll(t.utterance, "post code", "postcode")
	field, ok := preference.Extract(infoFields, utterance, infoBoundaries, t.m.opts.MaxDistance)

	switch {
	case !ok || t.c.Chosen == nil:
		t.say(MsgNotUnderstood, nil)
	case field == "phone":
		t.say(MsgPhone, t.c.Chosen.Bindings())
	case field == "address":
		t.say(MsgAddress, t.c.Chosen.Bindings())
	case field == "postcode":
		t.say(MsgPostcode, t.c.Chosen.Bindings())
	default:
		t.say(MsgNotUnderstood, nil)
	}
	t.say(MsgAnythingElse, nil)
}
