package solve

import (
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance bounds how far off an unknown import can be from a
// known package FQN before it stops being a plausible typo.
const maxSuggestionDistance = 3

// suggest returns known FQNs close to needle by edit distance, nearest
// first.
func suggest(needle string, haystack []string) []string {
	r := []rune(needle)
	options := make(suggestions, 0, len(haystack))
	for _, straw := range haystack {
		distance := levenshtein.DistanceForStrings(r, []rune(straw), levenshtein.DefaultOptions)
		if len(straw) > 0 && distance <= maxSuggestionDistance {
			options = append(options, suggestion{s: straw, dist: distance})
		}
	}
	sort.Sort(options)
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.s
	}
	return ret
}

// suggestionMessage renders suggest's result as the trailing clause of an
// unknown-import error message, or "" if nothing was close enough.
func suggestionMessage(needle string, haystack []string) string {
	options := suggest(needle, haystack)
	if len(options) == 0 {
		return ""
	}
	msg := "; maybe you meant "
	for i, o := range options {
		if i > 0 {
			if i < len(options)-1 {
				msg += ", "
			} else {
				msg += " or "
			}
		}
		msg += o
	}
	return msg + "?"
}

type suggestion struct {
	s    string
	dist int
}
type suggestions []suggestion

func (s suggestions) Len() int           { return len(s) }
func (s suggestions) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s suggestions) Less(i, j int) bool { return s[i].dist < s[j].dist }
