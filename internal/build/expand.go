package build

import "regexp"

// referencePattern matches ${NAME} and $NAME references. Names start with a
// letter or underscore; the braced form also allows dots.
var referencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand replaces variable references in input with values from vars.
// References to unknown variables are left untouched so that a template
// such as "release-${VERSION}" stays recognisable when VERSION is unset.
func Expand(input string, vars map[string]string) string {
	return referencePattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := referencePattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}
