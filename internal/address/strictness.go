package address

// Strictness is the dial between trusting the user and trusting the
// verification service.
type Strictness string

const (
	// StrictnessOff disables verification for the form.
	StrictnessOff         Strictness = "false"
	StrictnessStrict      Strictness = "strict"
	StrictnessNormal      Strictness = "normal"
	StrictnessRelaxed     Strictness = "relaxed"
	StrictnessPassthrough Strictness = "passthrough"
)

// DefaultStrictness applies when neither configuration nor the form specify a level.
const DefaultStrictness = StrictnessNormal

// IsValid reports whether s is one of the known levels.
func (s Strictness) IsValid() bool {
	switch s {
	case StrictnessOff, StrictnessStrict, StrictnessNormal, StrictnessRelaxed, StrictnessPassthrough:
		return true
	}
	return false
}

func (s Strictness) String() string {
	return string(s)
}

// ResolveStrictness picks the configured level when valid, then the level
// declared on the form, then DefaultStrictness.
func ResolveStrictness(configured, formAttribute string) Strictness {
	if s := Strictness(configured); s.IsValid() {
		return s
	}
	if s := Strictness(formAttribute); s.IsValid() {
		return s
	}
	return DefaultStrictness
}
