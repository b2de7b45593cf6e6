package address

import "strings"

var domesticAliases = map[string]struct{}{
	"us":                       {},
	"usa":                      {},
	"u.s.":                     {},
	"u.s.a.":                   {},
	"united states":            {},
	"united states of america": {},
	"america":                  {},
}

// IsInternational reports whether a country value points outside the US.
// An empty value is treated as domestic.
func IsInternational(country string) bool {
	c := normalizeCountry(country)
	if c == "" {
		return false
	}
	_, domestic := domesticAliases[c]
	return !domestic
}

// CountryCode resolves a country name or code to a lowercase ISO 3166-1
// alpha-2 code. Two-letter values pass through; unknown names are returned
// normalized so the service can report them.
func CountryCode(country string) string {
	c := normalizeCountry(country)
	if len(c) == 2 {
		return c
	}
	if code, ok := countryCodes[c]; ok {
		return code
	}
	return c
}

func normalizeCountry(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

var countryCodes = map[string]string{
	"afghanistan":          "af",
	"albania":              "al",
	"algeria":              "dz",
	"argentina":            "ar",
	"armenia":              "am",
	"australia":            "au",
	"austria":              "at",
	"bahamas":              "bs",
	"bangladesh":           "bd",
	"belgium":              "be",
	"bermuda":              "bm",
	"bolivia":              "bo",
	"brazil":               "br",
	"bulgaria":             "bg",
	"canada":               "ca",
	"chile":                "cl",
	"china":                "cn",
	"colombia":             "co",
	"costa rica":           "cr",
	"croatia":              "hr",
	"cyprus":               "cy",
	"czech republic":       "cz",
	"czechia":              "cz",
	"denmark":              "dk",
	"dominican republic":   "do",
	"ecuador":              "ec",
	"egypt":                "eg",
	"el salvador":          "sv",
	"estonia":              "ee",
	"finland":              "fi",
	"france":               "fr",
	"germany":              "de",
	"greece":               "gr",
	"guatemala":            "gt",
	"honduras":             "hn",
	"hong kong":            "hk",
	"hungary":              "hu",
	"iceland":              "is",
	"india":                "in",
	"indonesia":            "id",
	"ireland":              "ie",
	"israel":               "il",
	"italy":                "it",
	"jamaica":              "jm",
	"japan":                "jp",
	"kenya":                "ke",
	"latvia":               "lv",
	"lithuania":            "lt",
	"luxembourg":           "lu",
	"malaysia":             "my",
	"malta":                "mt",
	"mexico":               "mx",
	"morocco":              "ma",
	"netherlands":          "nl",
	"new zealand":          "nz",
	"nicaragua":            "ni",
	"nigeria":              "ng",
	"norway":               "no",
	"pakistan":             "pk",
	"panama":               "pa",
	"paraguay":             "py",
	"peru":                 "pe",
	"philippines":          "ph",
	"poland":               "pl",
	"portugal":             "pt",
	"romania":              "ro",
	"saudi arabia":         "sa",
	"serbia":               "rs",
	"singapore":            "sg",
	"slovakia":             "sk",
	"slovenia":             "si",
	"south africa":         "za",
	"south korea":          "kr",
	"spain":                "es",
	"sweden":               "se",
	"switzerland":          "ch",
	"taiwan":               "tw",
	"thailand":             "th",
	"turkey":               "tr",
	"ukraine":              "ua",
	"united arab emirates": "ae",
	"united kingdom":       "gb",
	"great britain":        "gb",
	"uruguay":              "uy",
	"venezuela":            "ve",
	"vietnam":              "vn",
}
