package address

// Outcome is the classification of one verification attempt.
type Outcome string

const (
	OutcomeDeliverable                 Outcome = "deliverable"
	OutcomeDeliverableNeedsImprovement Outcome = "deliverable_needs_improvement"
	OutcomeDeliverableMissingUnit      Outcome = "deliverable_missing_unit"
	OutcomeDeliverableUnnecessaryUnit  Outcome = "deliverable_unnecessary_unit"
	OutcomeDeliverableIncorrectUnit    Outcome = "deliverable_incorrect_unit"
	OutcomeUndeliverable               Outcome = "undeliverable"
	// OutcomeServiceUnavailable covers no response, network failure, timeouts,
	// malformed bodies and any status other than 200 and 401.
	OutcomeServiceUnavailable Outcome = "service_unavailable"
	OutcomeUnauthorized       Outcome = "unauthorized"
	// OutcomeUnknown is a successful call with an unrecognized classification.
	OutcomeUnknown Outcome = "unknown"
	// OutcomeInvalidInput is a successful call reporting a missing or invalid field.
	OutcomeInvalidInput Outcome = "invalid_input"
)

// AllOutcomes enumerates every outcome, for exhaustive policy checks.
var AllOutcomes = []Outcome{
	OutcomeDeliverable,
	OutcomeDeliverableNeedsImprovement,
	OutcomeDeliverableMissingUnit,
	OutcomeDeliverableUnnecessaryUnit,
	OutcomeDeliverableIncorrectUnit,
	OutcomeUndeliverable,
	OutcomeServiceUnavailable,
	OutcomeUnauthorized,
	OutcomeUnknown,
	OutcomeInvalidInput,
}

// IsDeliverable reports whether the service considers the address deliverable,
// including the unit-related variants.
func (o Outcome) IsDeliverable() bool {
	switch o {
	case OutcomeDeliverable, OutcomeDeliverableNeedsImprovement,
		OutcomeDeliverableMissingUnit, OutcomeDeliverableUnnecessaryUnit, OutcomeDeliverableIncorrectUnit:
		return true
	}
	return false
}

// IsUnitIssue reports whether the outcome is one of the unit mismatch variants.
func (o Outcome) IsUnitIssue() bool {
	switch o {
	case OutcomeDeliverableMissingUnit, OutcomeDeliverableUnnecessaryUnit, OutcomeDeliverableIncorrectUnit:
		return true
	}
	return false
}

// FailsOpen reports whether the outcome stems from an infrastructure problem
// rather than from the address itself.
func (o Outcome) FailsOpen() bool {
	return o == OutcomeServiceUnavailable || o == OutcomeUnauthorized
}

// Kind returns the message kind shown for the outcome, or "" when the outcome
// has nothing to tell the user. OutcomeInvalidInput carries its own kind.
func (o Outcome) Kind() ErrorKind {
	switch o {
	case OutcomeDeliverableMissingUnit:
		return KindMissingUnit
	case OutcomeDeliverableUnnecessaryUnit:
		return KindUnnecessaryUnit
	case OutcomeDeliverableIncorrectUnit:
		return KindIncorrectUnit
	case OutcomeUndeliverable:
		return KindUndeliverable
	case OutcomeUnknown:
		return KindDefault
	}
	return ""
}

func (o Outcome) String() string {
	return string(o)
}
