// Package intent recognizes the skill's intents in free text.
package intent

import (
	"regexp"
	"strings"
)

const (
	GetNextAppointment   = "GetNextAppointment"
	GetDaysAppointments  = "GetDaysAppointments"
	GetFirstAppointment  = "GetFirstAppointment"
	ScheduleAt           = "ScheduleAt"
	RemindAt             = "RemindAt"
	SlotAppointmentTitle = "appointmenttitle"
	SlotMessage          = "message"
	SlotWhen             = "when"
)

// Intent is a recognized utterance with its slots
type Intent struct {
	Name      string
	Slots     map[string]string
	Utterance string
}

// Vocabulary lists the keyword phrases of each keyword class
type Vocabulary struct {
	Next        []string
	Appointment []string
	Schedule    []string
	Query       []string
	First       []string
}

// DefaultVocabulary is the English keyword set
var DefaultVocabulary = Vocabulary{
	Next:        []string{"next", "upcoming", "coming up"},
	Appointment: []string{"appointment", "appointments", "meeting", "meetings", "event", "events"},
	Schedule:    []string{"schedule", "calendar", "agenda", "plans"},
	Query:       []string{"what", "what's", "whats", "do i have", "show", "tell me", "anything"},
	First:       []string{"first", "earliest"},
}

var (
	scheduleAtPattern = regexp.MustCompile(`^(?:schedule|add|book|create)\s+(?:an?\s+)?(?:appointment\s+|event\s+|meeting\s+)?(.+?)\s+(?:at|on|for)\s+(.+)$`)
	remindPattern     = regexp.MustCompile(`^remind me\s+(?:to\s+|about\s+)?(.+?)\s+(at|on|in|tomorrow|today|next)\b(.*)$`)
	punctuation       = regexp.MustCompile(`[^\p{L}\p{N}'\s:]+`)
)

// Matcher maps utterances to intents with keyword rules and two patterns
type Matcher struct {
	vocab Vocabulary
}

func NewMatcher(vocab Vocabulary) *Matcher {
	return &Matcher{vocab: vocab}
}

// Match returns the recognized intent; ok is false when nothing matched
func (m *Matcher) Match(utterance string) (Intent, bool) {
	text := clean(utterance)
	if text == "" {
		return Intent{}, false
	}

	if sm := remindPattern.FindStringSubmatch(text); sm != nil {
		when := strings.TrimSpace(sm[2] + sm[3])
		return m.intent(RemindAt, utterance, map[string]string{SlotMessage: sm[1], SlotWhen: when}), true
	}
	if sm := scheduleAtPattern.FindStringSubmatch(text); sm != nil && !m.isQuery(text) {
		return m.intent(ScheduleAt, utterance, map[string]string{SlotAppointmentTitle: sm[1], SlotWhen: sm[2]}), true
	}

	padded := " " + text + " "
	subject := has(padded, m.vocab.Appointment) || has(padded, m.vocab.Schedule)
	if !subject {
		return Intent{}, false
	}

	switch {
	case has(padded, m.vocab.Next):
		return m.intent(GetNextAppointment, utterance, nil), true
	case has(padded, m.vocab.First):
		return m.intent(GetFirstAppointment, utterance, nil), true
	case has(padded, m.vocab.Query):
		return m.intent(GetDaysAppointments, utterance, nil), true
	}
	return Intent{}, false
}

func (m *Matcher) isQuery(text string) bool {
	return has(" "+text+" ", m.vocab.Query)
}

func (m *Matcher) intent(name, utterance string, slots map[string]string) Intent {
	if slots == nil {
		slots = map[string]string{}
	}
	return Intent{Name: name, Slots: slots, Utterance: utterance}
}

func clean(s string) string {
	s = punctuation.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

func has(padded string, words []string) bool {
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}
