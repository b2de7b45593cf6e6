package enrichment

import "avelements/internal/address"

// PageState is the detection result for one form.
type PageState struct {
	Autocomplete  bool               `json:"autocomplete"`
	Verify        bool               `json:"verify"`
	Enrich        bool               `json:"enrich"`
	CreateMessage bool               `json:"create_message"`
	Strictness    address.Strictness `json:"strictness"`
}

// Detect derives the page state of d. configured is the strictness set in the
// integration's configuration, which wins over the form attribute when valid.
func Detect(d Descriptor, configured string) PageState {
	strictness := address.ResolveStrictness(configured, d.Value(AttrVerify))

	createMessage := d.Value(AttrVerifyMessage) == "true" || (d.InForm && !d.HasMessage)
	autocomplete := d.HasPrimary && d.Value(AttrPrimary) != "false"
	verify := strictness != address.StrictnessOff && d.InForm &&
		(strictness == address.StrictnessPassthrough || d.HasMessage || createMessage)

	return PageState{
		Autocomplete:  autocomplete,
		Verify:        verify,
		Enrich:        verify || autocomplete,
		CreateMessage: createMessage,
		Strictness:    strictness,
	}
}
