package report

import (
	"regexp"
	"strings"
)

// boilerplate maps a lower-cased detection type to phrases stripped from its
// details before instances are compared. Older servers embedded library
// attribution in clipping descriptions.
var boilerplate = map[string][]string{
	"clipping": {
		"(detected using Hazel's clipping detection library)",
		"detected using Hazel's clipping detection library",
		"using the Hazel distortion detector",
		"Clipping detected",
	},
}

var boilerplatePatterns = compileBoilerplate(boilerplate)

func compileBoilerplate(table map[string][]string) map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(table))
	for typ, phrases := range table {
		for _, phrase := range phrases {
			out[typ] = append(out[typ], regexp.MustCompile("(?i)"+regexp.QuoteMeta(phrase)))
		}
	}
	return out
}

// CleanDetails strips the boilerplate registered for typ and trims the
// result. Types without an entry are returned unchanged.
func CleanDetails(typ, details string) string {
	patterns, ok := boilerplatePatterns[strings.ToLower(typ)]
	if !ok {
		return details
	}
	for _, re := range patterns {
		details = re.ReplaceAllString(details, "")
	}
	return strings.TrimSpace(details)
}
