// Package intent maps a normalized utterance, plus the conversation context,
// to a spoken response or a termination signal.
//
// Classification is a first-match-wins ordered rule list evaluated by
// substring containment. The order is load-bearing: a later rule never fires
// when an earlier rule's trigger is present in the same utterance. A pending
// slot bypasses the list entirely for exactly one turn.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/hark/internal/browse"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/message"
)

// Fixed responses.
const (
	NotCaughtText  = "I didn't catch that. Please try again."
	GoodbyeText    = "Goodbye!"
	VideoQueryText = "What would you like me to search for on YouTube?"
	GreetingText   = "Hello! How can I help you?"
	IdentityText   = "I'm your voice assistant. You can call me Assistant."
	GratitudeText  = "You're welcome! Happy to help."
	MorningText    = "Good morning! Hope you have a great day ahead!"
	EveningText    = "Good evening! Have a wonderful evening!"
	FallbackText   = "I'm not sure how to help with that. Try asking about time, date, weather, or tell me to open Google."
)

// HowAreYouResponses is the pick set for the "how are you" intent.
var HowAreYouResponses = []string{
	"I'm doing great! Thanks for asking. How are you?",
	"I'm fantastic! Ready to help you with anything you need.",
	"I'm excellent! What can I do for you today?",
	"I'm doing well, thank you! How can I assist you?",
}

// weatherTemplates take the time-of-day bucket as their only verb.
var weatherTemplates = []string{
	"I don't have access to real-time weather data, but I hope it's a beautiful %s where you are!",
	"I can't check the weather right now, but you can ask me to open Google and search for weather.%.0s",
	"I'm not connected to a weather service yet, but I hope the weather is nice this %s!",
}

// videoArgTriggers are tried in order; the argument is whatever follows the
// last occurrence of the first trigger present.
var videoArgTriggers = []string{"search on youtube for", "youtube for", "search youtube"}

type rule struct {
	name     Name
	triggers []string
	respond  func(c *Classifier, ctx context.Context, u message.Utterance, conv *Context) Result
}

// rules is evaluated top to bottom; the first rule with a matching trigger wins.
var rules = []rule{
	{NameExit, []string{"exit", "quit", "stop"}, (*Classifier).exit},
	{NameTime, []string{"time"}, (*Classifier).tellTime},
	{NameDate, []string{"date"}, (*Classifier).tellDate},
	{NameOpenSite, []string{"open google"}, (*Classifier).openHome},
	{NameVideoSearch, []string{"search on youtube", "youtube"}, (*Classifier).videoSearch},
	{NameGreeting, []string{"hello", "hi"}, fixed(NameGreeting, GreetingText)},
	{NameHowAreYou, []string{"how are you", "nasılsın"}, (*Classifier).howAreYou},
	{NameWeather, []string{"weather", "hava", "hava nasıl"}, (*Classifier).weather},
	{NameIdentity, []string{"your name", "who are you", "adın ne"}, fixed(NameIdentity, IdentityText)},
	{NameGratitude, []string{"thank", "thanks", "teşekkür"}, fixed(NameGratitude, GratitudeText)},
	{NameMorning, []string{"good morning", "günaydın"}, fixed(NameMorning, MorningText)},
	{NameEvening, []string{"good night", "good evening", "iyi geceler"}, fixed(NameEvening, EveningText)},
}

func fixed(name Name, text string) func(*Classifier, context.Context, message.Utterance, *Context) Result {
	return func(*Classifier, context.Context, message.Utterance, *Context) Result {
		return Speak(name, text)
	}
}

// Classifier is the rule engine. It holds no conversation state of its own.
type Classifier struct {
	browser        browse.Browser
	picker         Picker
	clock          Clock
	homeURL        string
	videoSearchURL string
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithPicker replaces the random response picker.
func WithPicker(p Picker) Option {
	return func(c *Classifier) { c.picker = p }
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Classifier) { c.clock = clock }
}

// New creates a classifier that performs browse side effects through b.
func New(cfg config.IntentConfig, b browse.Browser, opts ...Option) *Classifier {
	c := &Classifier{
		browser:        b,
		picker:         RandomPicker{},
		clock:          time.Now,
		homeURL:        cfg.HomeURL,
		videoSearchURL: cfg.VideoSearchURL,
	}
	if c.homeURL == "" {
		c.homeURL = config.DefaultHomeURL
	}
	if c.videoSearchURL == "" {
		c.videoSearchURL = config.DefaultVideoSearchURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps u to a Result, reading and updating conv.
//
// It never fails: side-effect errors become apology text. The sentinel
// utterance yields NotCaughtText and leaves conv untouched.
func (c *Classifier) Classify(ctx context.Context, u message.Utterance, conv *Context) Result {
	if !u.Heard() {
		return Speak(NameNoInput, NotCaughtText)
	}

	if conv.PendingSlot == SlotVideoSearchQuery {
		conv.PendingSlot = SlotNone
		conv.LastTopic = NameSlotFill
		return c.searchVideo(ctx, u.Text(), NameSlotFill)
	}
	conv.PendingSlot = SlotNone

	for _, r := range rules {
		if u.Contains(r.triggers...) {
			conv.LastTopic = r.name
			return r.respond(c, ctx, u, conv)
		}
	}

	conv.LastTopic = NameFallback
	return Speak(NameFallback, FallbackText)
}

func (c *Classifier) exit(context.Context, message.Utterance, *Context) Result {
	return Terminate(GoodbyeText)
}

func (c *Classifier) tellTime(context.Context, message.Utterance, *Context) Result {
	return Speak(NameTime, "The time is "+c.clock().Format("03:04 PM"))
}

func (c *Classifier) tellDate(context.Context, message.Utterance, *Context) Result {
	return Speak(NameDate, "Today is "+c.clock().Format("January 02, 2006"))
}

func (c *Classifier) openHome(ctx context.Context, _ message.Utterance, _ *Context) Result {
	if err := c.browser.Open(ctx, c.homeURL); err != nil {
		slog.Warn("open home failed", "url", c.homeURL, "error", err)
		return Speak(NameOpenSite, fmt.Sprintf("Sorry, I couldn't open Google. Error: %v", err))
	}
	return Speak(NameOpenSite, "Opening Google")
}

func (c *Classifier) videoSearch(ctx context.Context, u message.Utterance, conv *Context) Result {
	if term := extractVideoQuery(u.Text()); term != "" {
		return c.searchVideo(ctx, term, NameVideoSearch)
	}
	conv.PendingSlot = SlotVideoSearchQuery
	return Ask(NameVideoSearch, VideoQueryText, SlotVideoSearchQuery)
}

func (c *Classifier) searchVideo(ctx context.Context, term string, name Name) Result {
	target := c.videoSearchURL + url.QueryEscape(term)
	if err := c.browser.Open(ctx, target); err != nil {
		slog.Warn("video search failed", "url", target, "error", err)
		return Speak(name, fmt.Sprintf("Sorry, I couldn't search YouTube. Error: %v", err))
	}
	return Speak(name, "Searching YouTube for "+term)
}

func (c *Classifier) howAreYou(_ context.Context, _ message.Utterance, conv *Context) Result {
	conv.InteractionCount++
	return Speak(NameHowAreYou, pick(c.picker, HowAreYouResponses))
}

func (c *Classifier) weather(context.Context, message.Utterance, *Context) Result {
	return Speak(NameWeather, fmt.Sprintf(pick(c.picker, weatherTemplates), TimeOfDay(c.clock())))
}

// WeatherResponses renders the weather pick set for a time-of-day bucket.
func WeatherResponses(bucket string) []string {
	out := make([]string, len(weatherTemplates))
	for i, tmpl := range weatherTemplates {
		out[i] = fmt.Sprintf(tmpl, bucket)
	}
	return out
}

// TimeOfDay buckets t into morning (06–11), afternoon (12–17) or evening.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

func extractVideoQuery(text string) string {
	for _, trigger := range videoArgTriggers {
		if i := strings.LastIndex(text, trigger); i >= 0 {
			return strings.TrimSpace(text[i+len(trigger):])
		}
	}
	return ""
}
