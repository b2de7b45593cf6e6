// Package policy decides whether a verified submission may proceed.
//
// Decide is pure domain logic: no I/O, no side effects. It receives the
// strictness level, the verification outcome and the user's confirmation and
// override state, and returns exactly one verdict.
package policy

import "avelements/internal/address"

// Verdict is the binary result of a policy evaluation.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictBlock Verdict = "block"
)

// Reason records which rule produced the verdict.
type Reason string

const (
	ReasonVerificationDisabled Reason = "verification_disabled"
	ReasonPassthrough          Reason = "passthrough"
	ReasonOverride             Reason = "override"
	ReasonDeliverable          Reason = "deliverable"
	ReasonFailOpen             Reason = "fail_open"
	ReasonNeedsImprovement     Reason = "needs_improvement"
	ReasonConfirmed            Reason = "confirmed"
	ReasonBlocked              Reason = "blocked"
)

// Input is everything a decision depends on.
type Input struct {
	Strictness address.Strictness
	Outcome    address.Outcome
	// Kind overrides the outcome's default message kind. Used for
	// OutcomeInvalidInput, whose kind comes from the service message.
	Kind      address.ErrorKind
	Confirmed bool
	Override  bool
}

func (in Input) kind() address.ErrorKind {
	if in.Kind != "" {
		return in.Kind
	}
	if in.Outcome == address.OutcomeInvalidInput {
		return address.KindDefault
	}
	return in.Outcome.Kind()
}

// Decision is the result of Evaluate.
type Decision struct {
	Verdict Verdict
	Reason  Reason
	// Kind is the message kind associated with the outcome, empty when there
	// is nothing to show.
	Kind address.ErrorKind
	// Notify asks the caller to surface Kind even though the submission is
	// allowed (passthrough and override).
	Notify bool
	// ArmOverride tells the caller to let the next attempt through.
	ArmOverride bool
}

// Allowed reports whether the submission may proceed.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictAllow
}

// Decide evaluates the policy for an outcome that carries its default kind.
func Decide(strictness address.Strictness, outcome address.Outcome, confirmed, override bool) Decision {
	return Evaluate(Input{
		Strictness: strictness,
		Outcome:    outcome,
		Confirmed:  confirmed,
		Override:   override,
	})
}

// Evaluate applies the strictness rules in priority order (first match wins):
//  1. passthrough or an armed override allows, surfacing any message the user
//     has not already confirmed
//  2. deliverable and infrastructure failures allow (fail open)
//  3. deliverable-but-needs-improvement allows silently
//  4. confirmed unit issues allow unless strict
//  5. confirmed undeliverable allows under passthrough
//  6. everything else blocks and may arm the override for the next attempt
func Evaluate(in Input) Decision {
	kind := in.kind()

	if in.Strictness == address.StrictnessOff {
		return allow(ReasonVerificationDisabled, "")
	}

	// Rule 1
	if in.Strictness == address.StrictnessPassthrough || in.Override {
		reason := ReasonOverride
		if in.Strictness == address.StrictnessPassthrough {
			reason = ReasonPassthrough
		}
		d := allow(reason, kind)
		d.Notify = kind != "" && !confirmedIssue(in)
		return d
	}

	// Rule 2
	if in.Outcome == address.OutcomeDeliverable {
		return allow(ReasonDeliverable, "")
	}
	if in.Outcome.FailsOpen() {
		return allow(ReasonFailOpen, "")
	}

	// Rule 3
	if in.Outcome == address.OutcomeDeliverableNeedsImprovement {
		return allow(ReasonNeedsImprovement, "")
	}

	// Rules 4 and 5
	if confirmedIssue(in) {
		return allow(ReasonConfirmed, kind)
	}

	// Rule 6
	return Decision{
		Verdict:     VerdictBlock,
		Reason:      ReasonBlocked,
		Kind:        kind,
		ArmOverride: ArmOverride(in.Strictness, kind),
	}
}

// ArmOverride reports whether a blocked attempt with the given message kind
// lets the user through on the next attempt. Undeliverable addresses are only
// overridable when relaxed; DEFAULT errors never are, except under passthrough.
func ArmOverride(strictness address.Strictness, kind address.ErrorKind) bool {
	if strictness == address.StrictnessPassthrough {
		return true
	}
	if kind == address.KindUndeliverable {
		return strictness == address.StrictnessRelaxed
	}
	return kind != address.KindDefault && strictness != address.StrictnessStrict
}

// confirmedIssue reports whether the user already saw and accepted the
// problem: a confirmed unit issue unless strict, or a confirmed undeliverable
// address under passthrough.
func confirmedIssue(in Input) bool {
	if !in.Confirmed {
		return false
	}
	if in.Outcome.IsUnitIssue() {
		return in.Strictness != address.StrictnessStrict
	}
	return in.Outcome == address.OutcomeUndeliverable && in.Strictness == address.StrictnessPassthrough
}

func allow(reason Reason, kind address.ErrorKind) Decision {
	return Decision{Verdict: VerdictAllow, Reason: reason, Kind: kind}
}
