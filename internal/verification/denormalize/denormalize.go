// Package denormalize reshapes a standardized address back into the field
// layout the user filled in.
//
// The verification service folds unit numbers into the primary line
// ("185 BERRY ST STE 6100"). Forms with a dedicated secondary input expect
// the unit to stay there, so when the user typed into that input the unit is
// split back out.
package denormalize

import "strings"

// Parts is a primary/secondary line pair.
type Parts struct {
	Primary   string `json:"primary_line"`
	Secondary string `json:"secondary_line"`
}

// Verified is the service's view of the street lines.
type Verified struct {
	PrimaryLine   string
	SecondaryLine string
	// Designator is the secondary unit designator the service recognized
	// ("APT", "STE", "#"), empty when none.
	Designator string
}

// Resolve returns the lines to write back into the form.
func Resolve(v Verified, userTypedSecondary, enabled bool) Parts {
	echo := Parts{Primary: v.PrimaryLine, Secondary: v.SecondaryLine}
	if v.SecondaryLine != "" || !enabled {
		return echo
	}
	if v.Designator == "" || !userTypedSecondary {
		return echo
	}
	primary, secondary, ok := split(v.PrimaryLine, v.Designator)
	if !ok {
		return echo
	}
	return Parts{Primary: primary, Secondary: secondary}
}

// split cuts line at the last whole-word occurrence of designator, falling
// back to the last raw occurrence for designators glued to the unit ("#4").
func split(line, designator string) (primary, secondary string, ok bool) {
	tokens := strings.Fields(line)
	for i := len(tokens) - 1; i > 0; i-- {
		if strings.EqualFold(tokens[i], designator) {
			return strings.Join(tokens[:i], " "), strings.Join(tokens[i:], " "), true
		}
	}

	idx := strings.LastIndex(line, designator)
	if idx <= 0 {
		return "", "", false
	}
	primary = strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+len(designator):])
	if primary == "" {
		return "", "", false
	}
	secondary = designator
	if rest != "" {
		secondary += " " + rest
	}
	return primary, secondary, true
}
