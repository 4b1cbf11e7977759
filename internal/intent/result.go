package intent

import "strings"

// Name identifies a classified intent. It doubles as a metrics label.
type Name string

const (
	NameNoInput     Name = "no_input"
	NameSlotFill    Name = "slot_fill"
	NameExit        Name = "exit"
	NameTime        Name = "time"
	NameDate        Name = "date"
	NameOpenSite    Name = "open_site"
	NameVideoSearch Name = "video_search"
	NameGreeting    Name = "greeting"
	NameHowAreYou   Name = "how_are_you"
	NameWeather     Name = "weather"
	NameIdentity    Name = "identity"
	NameGratitude   Name = "gratitude"
	NameMorning     Name = "good_morning"
	NameEvening     Name = "good_evening"
	NameFallback    Name = "fallback"
)

// Kind tags what the dialogue loop should do with a Result.
type Kind int

const (
	// KindSpeak says the text and keeps the conversation going.
	KindSpeak Kind = iota

	// KindTerminate says the text and stops the whole process.
	KindTerminate
)

func (k Kind) String() string {
	if k == KindTerminate {
		return "terminate"
	}
	return "speak"
}

// Result is the outcome of classifying one utterance.
type Result struct {
	Kind   Kind
	Intent Name
	Text   string

	// FollowUp is the slot the next utterance will fill. Never set on KindTerminate.
	FollowUp Slot
}

// Speak builds a conversational response.
func Speak(intent Name, text string) Result {
	return Result{Kind: KindSpeak, Intent: intent, Text: text}
}

// Ask builds a clarifying question whose answer fills slot.
func Ask(intent Name, text string, slot Slot) Result {
	return Result{Kind: KindSpeak, Intent: intent, Text: text, FollowUp: slot}
}

// Terminate builds a process-stop signal.
func Terminate(text string) Result {
	return Result{Kind: KindTerminate, Intent: NameExit, Text: text}
}

// Terminates reports whether the process should stop.
func (r Result) Terminates() bool { return r.Kind == KindTerminate }

// ExpectsReply reports whether the response is itself a prompt, so the
// dialogue should wait for an answer without adding "anything else?".
func (r Result) ExpectsReply() bool {
	if r.Kind == KindTerminate {
		return false
	}
	return r.FollowUp != SlotNone || strings.Contains(r.Text, "?")
}
