// Package extract pulls a date and time out of a spoken utterance.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var numberWords = map[string]int{
	"first": 1, "one": 1,
	"second": 2, "two": 2,
	"third": 3, "three": 3,
	"fourth": 4, "four": 4,
	"fifth": 5, "five": 5,
	"sixth": 6, "six": 6,
	"seventh": 7, "seven": 7,
	"eighth": 8, "eight": 8,
	"ninth": 9, "nine": 9,
	"tenth": 10, "ten": 10,
	"eleventh": 11, "eleven": 11,
	"twelfth": 12, "twelve": 12,
	"thirteenth": 13, "thirteen": 13,
	"fourteenth": 14, "fourteen": 14,
	"fifteenth": 15, "fifteen": 15,
	"sixteenth": 16, "sixteen": 16,
	"seventeenth": 17, "seventeen": 17,
	"eighteenth": 18, "eighteen": 18,
	"nineteenth": 19, "nineteen": 19,
	"twentieth": 20, "twenty": 20,
	"twenty first": 21, "twenty one": 21,
	"twenty second": 22, "twenty two": 22,
	"twenty third": 23, "twenty three": 23,
	"twenty fourth": 24, "twenty four": 24,
	"twenty fifth": 25, "twenty five": 25,
	"twenty sixth": 26, "twenty six": 26,
	"twenty seventh": 27, "twenty seven": 27,
	"twenty eighth": 28, "twenty eight": 28,
	"twenty ninth": 29, "twenty nine": 29,
	"thirtieth": 30, "thirty": 30,
	"thirty first": 31, "thirty one": 31,
}

// longest alternatives first so "twenty first" wins over "twenty"
var numberPattern = func() *regexp.Regexp {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return regexp.MustCompile(`\b(` + strings.Join(words, "|") + `)\b`)
}()

var fillers = strings.NewReplacer(" of ", " ", " the ", " ")

// Normalize lowercases the utterance, rewrites spoken numbers as digits and
// drops filler words: "the twenty first of october" becomes "21 october".
func Normalize(s string) string {
	s = " " + strings.ToLower(strings.TrimSpace(s)) + " "
	s = numberPattern.ReplaceAllStringFunc(s, func(w string) string {
		return strconv.Itoa(numberWords[w])
	})
	// applied twice so adjacent fillers ("of the") both go
	s = fillers.Replace(fillers.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Extractor parses natural language dates relative to a base time
type Extractor struct {
	parser *when.Parser
}

func New() *Extractor {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Extractor{parser: w}
}

// Extract returns the first date found in the utterance, in base's
// location. Finding nothing is reported with ok == false, never an error.
func (x *Extractor) Extract(utterance string, base time.Time) (time.Time, bool) {
	text := Normalize(utterance)
	if text == "" {
		return time.Time{}, false
	}

	r, err := x.parser.Parse(text, base)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time.In(base.Location()).Truncate(time.Second), true
}
