// Package confirmation recognizes a user pushing through a warning by
// resubmitting the same address unchanged.
package confirmation

import "avelements/internal/address"

// IsConfirmation reports whether current repeats the last verified snapshot.
// Passthrough forms never need confirmation, and the first attempt of a
// session has nothing to confirm.
func IsConfirmation(current address.Fields, last *address.Fields, strictness address.Strictness) bool {
	if strictness == address.StrictnessPassthrough || last == nil {
		return false
	}
	return current.EqualFold(*last)
}
