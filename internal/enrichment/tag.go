package enrichment

// Tag is the enrichment state carried by a form.
type Tag string

const (
	TagUntouched Tag = "untouched"
	TagEnriched  Tag = "enriched"
)

// Transition applies a fresh detection to a form tagged current and returns
// the next tag and whether the form must be wired now. Only the untouched to
// enriched transition wires; an enriched form that stops qualifying returns
// to untouched.
func Transition(current Tag, state PageState) (Tag, bool) {
	if current == "" {
		current = TagUntouched
	}
	switch {
	case current == TagUntouched && state.Enrich:
		return TagEnriched, true
	case current == TagEnriched && !state.Enrich:
		return TagUntouched, false
	}
	return current, false
}
