package cleanup

import "strings"

// IsAffirmative reports whether a free-text answer is an explicit yes.
// Anything else, including blank or garbled input, is a decline.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ConfirmPrompt is the question asked before cleaning a target
func ConfirmPrompt(t Target) string {
	return "Clean " + t.Name() + "?"
}
