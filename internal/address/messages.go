package address

// ErrorKind selects the message shown to the user and the field it attaches to.
type ErrorKind string

const (
	KindPrimaryLine     ErrorKind = "primary_line"
	KindCityStateZip    ErrorKind = "city_state_zip"
	KindCountry         ErrorKind = "country"
	KindZip             ErrorKind = "zip"
	KindUndeliverable   ErrorKind = "undeliverable"
	KindMissingUnit     ErrorKind = "deliverable_missing_unit"
	KindUnnecessaryUnit ErrorKind = "deliverable_unnecessary_unit"
	KindIncorrectUnit   ErrorKind = "deliverable_incorrect_unit"
	KindConfirm         ErrorKind = "confirm"
	KindDefault         ErrorKind = "DEFAULT"
	KindFormDetection   ErrorKind = "form_detection"
)

// IsHTML reports whether the message for the kind is rendered as markup
// rather than text.
func (k ErrorKind) IsHTML() bool {
	return k == KindConfirm || k == KindFormDetection
}

// Messages maps each error kind to the text displayed for it.
type Messages map[ErrorKind]string

// DefaultMessages returns the built-in message catalogue.
func DefaultMessages() Messages {
	return Messages{
		KindPrimaryLine:     "Enter the Primary address.",
		KindCityStateZip:    "Enter City and State (or Zip).",
		KindCountry:         "Enter a country",
		KindZip:             "Enter a valid Zip.",
		KindUndeliverable:   "The address could not be verified.",
		KindMissingUnit:     "Enter a Suite or Unit.",
		KindUnnecessaryUnit: "Suite or Unit unnecessary.",
		KindIncorrectUnit:   "Incorrect Unit. Please confirm.",
		KindConfirm:         "Did you mean",
		KindDefault:         "Unknown Error. The address could not be verified.",
	}
}

// Merge returns a copy of m with every non-empty entry of overrides applied.
func (m Messages) Merge(overrides Messages) Messages {
	out := make(Messages, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Text returns the message for kind, falling back to the DEFAULT message.
func (m Messages) Text(kind ErrorKind) string {
	if msg, ok := m[kind]; ok {
		return msg
	}
	return m[KindDefault]
}

// Service validation messages that map onto field-level kinds.
const (
	serviceMsgPrimaryRequired = "primary_line is required or address is required"
	serviceMsgCityStateZip    = "zip_code is required or both city and state are required"
	serviceMsgZipFormat       = "zip_code must be in a valid zip or zip+4 format"
	serviceMsgCountryRequired = "country is required"
)

// ResolveErrorKind maps a message or deliverability string returned by the
// service onto an ErrorKind. Anything unrecognized resolves to KindDefault.
func ResolveErrorKind(message string, messages Messages) ErrorKind {
	switch message {
	case serviceMsgPrimaryRequired:
		return KindPrimaryLine
	case serviceMsgCityStateZip:
		return KindCityStateZip
	case serviceMsgZipFormat:
		return KindZip
	case serviceMsgCountryRequired:
		return KindCountry
	}
	if _, ok := messages[ErrorKind(message)]; ok {
		return ErrorKind(message)
	}
	return KindDefault
}
