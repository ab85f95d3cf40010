package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/room4-2/tablefinder/preference"
	"github.com/room4-2/tablefinder/restaurant"
)

var (
	daVinci = restaurant.Restaurant{
		Name: "da vinci pizzeria", Area: "north", Cuisine: "italian", PriceRange: "cheap",
		Phone: "01223 351707", Address: "20 milton road chesterton", Postcode: "c.b 4",
		Quality: "bad food", Crowdedness: "not busy", LengthOfStay: "long stay",
	}
	royalSpice = restaurant.Restaurant{
		Name: "royal spice", Area: "north", Cuisine: "indian", PriceRange: "cheap",
		Phone: "01733 553355", Address: "victoria avenue chesterton", Postcode: "c.b 4",
		Quality: "good food", Crowdedness: "busy", LengthOfStay: "long stay",
	}
	laMargherita = restaurant.Restaurant{
		Name: "la margherita", Area: "west", Cuisine: "italian", PriceRange: "cheap",
		Phone: "01223 315232", Address: "15 magdalene street city centre", Postcode: "c.b 3",
		Quality: "good food", Crowdedness: "not busy", LengthOfStay: "long stay",
	}
	frankie = restaurant.Restaurant{
		Name: "frankie and bennys", Area: "south", Cuisine: "italian", PriceRange: "expensive",
		Phone: "01223 412430", Address: "cambridge leisure park", Postcode: "c.b 1",
		Quality: "good food", Crowdedness: "not busy", LengthOfStay: "long stay",
	}
	pizzaHut = restaurant.Restaurant{
		Name: "pizza hut city centre", Area: "centre", Cuisine: "italian", PriceRange: "cheap",
		Phone: "01223 323737", Address: "regent street city centre", Postcode: "c.b 2",
		Quality: "good food", Crowdedness: "busy", LengthOfStay: "short stay",
	}
)

func fullCatalogue() []restaurant.Restaurant {
	return []restaurant.Restaurant{daVinci, royalSpice, laMargherita, frankie, pizzaHut}
}

func newMachine(t *testing.T, catalogue []restaurant.Restaurant, opts Options) *Machine {
	t.Helper()
	rules, err := restaurant.DefaultRules()
	require.NoError(t, err)
	return NewMachine(catalogue, rules, opts)
}

type step struct {
	act       Act
	utterance string
}

// drive advances c through steps and returns the final conversation and the
// reply of the last step.
func drive(t *testing.T, m *Machine, c Conversation, steps ...step) (Conversation, Reply) {
	t.Helper()
	var reply Reply
	for _, s := range steps {
		var err error
		c, reply, err = m.Advance(c, s.act, s.utterance)
		require.NoError(t, err)
	}
	return c, reply
}

func TestStart(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, reply := m.Start()
	assert.Equal(t, Welcome, c.State)
	assert.Equal(t, []MessageKey{MsgWelcome}, reply.Keys())
}

func TestStateTrace(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c := NewConversation()
	trace := []State{c.State}

	steps := []step{
		{ActHello, "hi"},
		{ActInform, "north"},
		{ActInform, "italian"},
	}
	for _, s := range steps {
		var reply Reply
		var err error
		c, reply, err = m.Advance(c, s.act, s.utterance)
		require.NoError(t, err)
		trace = append(trace, reply.Path...)
	}
	assert.False(t, c.Preferences.Requirement.IsSet())

	c, reply, err := m.Advance(c, ActInform, "cheap")
	require.NoError(t, err)
	trace = append(trace, reply.Path...)

	assert.Equal(t, []State{
		Welcome, AskArea,
		Welcome, AskCuisine,
		Welcome, AskAdditionalPreferences,
		Welcome, MakeSuggestion,
	}, trace)
	assert.True(t, c.Preferences.Requirement.IsAny())
	assert.Equal(t, preference.Specific("cheap"), c.Preferences.PriceRange)
	require.NotNil(t, c.Chosen)
	assert.Equal(t, daVinci.Name, c.Chosen.Name)
	assert.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	assert.Equal(t, daVinci.Name, reply.Messages[0].Bindings["name"])
}

func TestAskAdditionalDefaultsPriceRange(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "italian food in the west part of town"},
	)
	assert.Equal(t, AskAdditionalPreferences, c.State)
	assert.Equal(t, []MessageKey{MsgAskAdditional}, reply.Keys())

	c, _ = drive(t, m, c, step{ActInform, "nothing else"})
	assert.Equal(t, MakeSuggestion, c.State)
	assert.True(t, c.Preferences.PriceRange.IsAny())
	assert.True(t, c.Preferences.Requirement.IsAny())
	require.NotNil(t, c.Chosen)
	assert.Equal(t, laMargherita.Name, c.Chosen.Name)
}

func TestNoMatchWithoutPreviousSuggestion(t *testing.T) {
	m := newMachine(t, []restaurant.Restaurant{royalSpice, laMargherita, frankie}, Options{})

	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the north part of town"},
		step{ActInform, "nothing else"},
	)
	assert.Equal(t, MakeSuggestion, c.State)
	assert.Equal(t, []MessageKey{MsgNoMatch}, reply.Keys())
	assert.Nil(t, c.Chosen)
	assert.Empty(t, c.Candidates)

	c, reply = drive(t, m, c, step{ActNegate, "no"})
	assert.Equal(t, MakeSuggestion, c.State)
	assert.Equal(t, []MessageKey{MsgNoMatch}, reply.Keys())
}

func TestNoBetterAlternative(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})

	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the west part of town"},
		step{ActInform, "nothing else"},
	)
	require.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	require.NotNil(t, c.Chosen)
	assert.Nil(t, c.Previous)

	c, reply = drive(t, m, c, step{ActReqAlts, "is there anything else"})
	assert.Equal(t, []MessageKey{MsgNoBetterAlternative}, reply.Keys())
	assert.Equal(t, laMargherita.Name, c.Chosen.Name)
	require.NotNil(t, c.Previous)
	assert.Equal(t, laMargherita.Name, c.Previous.Name)

	c, reply = drive(t, m, c, step{ActNegate, "no"})
	assert.Equal(t, []MessageKey{MsgRepeatPrevious}, reply.Keys())
	assert.Equal(t, laMargherita.Name, c.Chosen.Name)
	assert.Equal(t, MakeSuggestion, c.State)
}

func TestAlternativesComeFromTheTail(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})

	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in any part of town"},
		step{ActInform, "no"},
	)
	require.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	assert.Equal(t, pizzaHut.Name, c.Chosen.Name)
	assert.Len(t, c.Candidates, 2)

	c, reply = drive(t, m, c, step{ActNull, "hmm"})
	assert.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	assert.Equal(t, laMargherita.Name, c.Chosen.Name)
	assert.Equal(t, pizzaHut.Name, c.Previous.Name)
	assert.Len(t, c.Candidates, 1)
}

func TestRequestAlternativesOffersEveryMatch(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})

	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in any part of town"},
		step{ActInform, "no"},
	)
	require.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	require.Equal(t, pizzaHut.Name, c.Chosen.Name)
	require.Len(t, c.Candidates, 2)

	var offered []string
	for range 2 {
		c, reply = drive(t, m, c, step{ActReqAlts, "is there anything else"})
		require.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
		offered = append(offered, c.Chosen.Name)
	}
	assert.Equal(t, []string{laMargherita.Name, daVinci.Name}, offered)
	assert.Equal(t, laMargherita.Name, c.Previous.Name)

	// Every match was offered; the list starts over.
	c, reply = drive(t, m, c, step{ActReqAlts, "is there anything else"})
	assert.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	assert.Equal(t, pizzaHut.Name, c.Chosen.Name)
	assert.Equal(t, []string{pizzaHut.Name}, c.Suggested)
}

func TestSuggestionExplainsRequirement(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})

	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "a touristic place with cheap italian food in the centre part of town"},
	)
	assert.Equal(t, MakeSuggestion, c.State)
	require.Equal(t, []MessageKey{MsgSuggestion, MsgExplanation}, reply.Keys())
	assert.Equal(t, pizzaHut.Name, c.Chosen.Name)
	assert.Equal(t, "touristic", reply.Messages[1].Bindings["requirement"])
	assert.Equal(t, "because it is cheap and serves good food", reply.Messages[1].Bindings["reasons"])
}

func TestNegateSkipsAdditionalPreferences(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, reply := drive(t, m, NewConversation(),
		step{ActInform, "italian food in the west part of town"},
		step{ActNegate, "no"},
	)
	assert.Equal(t, MakeSuggestion, c.State)
	assert.True(t, c.Preferences.PriceRange.IsAny())
	assert.True(t, c.Preferences.Requirement.IsAny())
	assert.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
}

func TestRestart(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{AllowRestart: true})

	c, _ := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the west part of town"},
		step{ActInform, "nothing else"},
	)
	require.NotNil(t, c.Chosen)

	for _, s := range []step{{ActRestart, "let's begin again"}, {ActInform, "start over"}} {
		restarted, reply, err := m.Advance(c, s.act, s.utterance)
		require.NoError(t, err)
		assert.Equal(t, Welcome, restarted.State)
		assert.Equal(t, preference.Preferences{}, restarted.Preferences)
		assert.Nil(t, restarted.Chosen)
		assert.Nil(t, restarted.Previous)
		assert.Empty(t, restarted.Candidates)
		assert.Equal(t, []MessageKey{MsgWelcome}, reply.Keys())
	}
}

func TestRestartDisabled(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})

	c, _ := drive(t, m, NewConversation(), step{ActInform, "i want italian food"})
	require.Equal(t, AskArea, c.State)

	c, reply := drive(t, m, c, step{ActRestart, "restart"})
	assert.Equal(t, AskArea, c.State)
	assert.Equal(t, preference.Specific("italian"), c.Preferences.Cuisine)
	assert.Equal(t, []MessageKey{MsgAskArea}, reply.Keys())
}

func TestByeEndsFromAnyState(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{AllowRestart: true})
	for _, s := range []State{Welcome, AskArea, AskCuisine, AskAdditionalPreferences, MakeSuggestion, GiveInformation} {
		for _, act := range []Act{ActBye, ActThankYou} {
			c, reply, err := m.Advance(Conversation{State: s}, act, "restart")
			require.NoError(t, err)
			assert.Equal(t, Exit, c.State, s.String())
			assert.True(t, c.Done())
			assert.Equal(t, []MessageKey{MsgGoodbye}, reply.Keys())
		}
	}
}

func TestOutOfRangeActIsNoOp(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	tests := []struct {
		state State
		act   Act
		want  []MessageKey
	}{
		{Welcome, ActAffirm, []MessageKey{MsgWelcome}},
		{AskArea, ActRequest, []MessageKey{MsgAskArea}},
		{AskCuisine, ActNull, []MessageKey{MsgAskCuisine}},
		{AskAdditionalPreferences, ActHello, []MessageKey{MsgAskAdditional}},
		{Exit, ActInform, []MessageKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			c, reply, err := m.Advance(Conversation{State: tt.state}, tt.act, "north")
			require.NoError(t, err)
			assert.Equal(t, tt.state, c.State)
			assert.Equal(t, tt.want, reply.Keys())
			assert.Equal(t, preference.Preferences{}, c.Preferences)
		})
	}
}

func TestGiveInformation(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	suggested, _ := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the west part of town"},
		step{ActInform, "nothing else"},
	)

	c, reply := drive(t, m, suggested, step{ActAck, "okay"})
	assert.Equal(t, GiveInformation, c.State)
	assert.Equal(t, []MessageKey{MsgMoreInfo}, reply.Keys())

	tests := []struct {
		utterance string
		want      MessageKey
		binding   string
		value     string
	}{
		{"what is the phone number", MsgPhone, "phone", laMargherita.Phone},
		{"what is the adress of it", MsgAddress, "address", laMargherita.Address},
		{"and the post code", MsgPostcode, "postcode", laMargherita.Postcode},
		{"does it have parking", MsgNotUnderstood, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			next, reply, err := m.Advance(c, ActRequest, tt.utterance)
			require.NoError(t, err)
			assert.Equal(t, GiveInformation, next.State)
			require.Equal(t, []MessageKey{tt.want, MsgAnythingElse}, reply.Keys())
			if tt.binding != "" {
				assert.Equal(t, tt.value, reply.Messages[0].Bindings[tt.binding])
			}
		})
	}

	c, reply = drive(t, m, c, step{ActNegate, "no"})
	assert.Equal(t, Exit, c.State)
	assert.Equal(t, []MessageKey{MsgGoodbye}, reply.Keys())
}

func TestRequestWhileSuggesting(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, _ := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the west part of town"},
		step{ActInform, "nothing else"},
	)

	c, reply := drive(t, m, c, step{ActRequest, "what is their phone number"})
	assert.Equal(t, GiveInformation, c.State)
	assert.Equal(t, []MessageKey{MsgPhone, MsgAnythingElse}, reply.Keys())
}

func TestInformWhileSuggestingRefilters(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, _ := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in the west part of town"},
		step{ActInform, "nothing else"},
	)
	require.Equal(t, laMargherita.Name, c.Chosen.Name)

	c, reply := drive(t, m, c, step{ActInform, "how about the north part of town"})
	assert.Equal(t, MakeSuggestion, c.State)
	assert.Equal(t, []MessageKey{MsgSuggestion}, reply.Keys())
	assert.Equal(t, daVinci.Name, c.Chosen.Name)
	assert.Equal(t, laMargherita.Name, c.Previous.Name)
}

func TestPreferencesAreMonotonic(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c := NewConversation()
	utterances := []string{"north", "gibberish", "italian", "", "whatever", "cheap", "more please"}

	var before preference.Preferences
	for _, u := range utterances {
		var err error
		c, _, err = m.Advance(c, ActInform, u)
		require.NoError(t, err)
		for _, f := range preference.Fields {
			if before.Get(f).IsSet() {
				assert.True(t, c.Preferences.Get(f).IsSet(), "%s reverted after %q", f, u)
			}
		}
		before = c.Preferences
	}
}

func TestAdvanceLeavesInputUntouched(t *testing.T) {
	m := newMachine(t, fullCatalogue(), Options{})
	c, _ := drive(t, m, NewConversation(),
		step{ActInform, "cheap italian food in any part of town"},
		step{ActInform, "no"},
	)
	candidates := len(c.Candidates)
	chosen := c.Chosen.Name

	_, _, err := m.Advance(c, ActNull, "")
	require.NoError(t, err)

	assert.Len(t, c.Candidates, candidates)
	assert.Equal(t, chosen, c.Chosen.Name)
	assert.Equal(t, MakeSuggestion, c.State)
}
