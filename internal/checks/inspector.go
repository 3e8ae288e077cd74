package checks

import "strings"

// InspectMainScript registers one check per identifier, in order. Matching is
// a case-sensitive substring test; the script is not parsed.
func InspectMainScript(checklist *Checklist, content, scriptName string, identifiers []string) {
	for _, ident := range identifiers {
		checklist.Check(
			"identifier-"+strings.ToLower(ident),
			strings.Contains(content, ident),
			ident+" found",
			ident+" not found in "+scriptName,
		)
	}
}
