package state

import "strings"

// listSeparator joins list elements when a list is stored as one value.
// Unit separator, so ordinary text survives the round trip.
const listSeparator = "\x1f"

// FlattenList renders a list of strings into one storable value.
// RestoreList reverses it.
func FlattenList(items []string) string {
	return strings.Join(items, listSeparator)
}

// RestoreList parses a value produced by FlattenList back into a list.
// An empty value restores to nil.
func RestoreList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, listSeparator)
}
