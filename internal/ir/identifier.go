package ir

import "regexp"

// identRegex matches the identifier subset the target language and the
// editor both accept for class and field names.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are keywords that can never name a class or field.
var reservedNames = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {},
	"finally": {}, "for": {}, "from": {}, "global": {}, "if": {},
	"import": {}, "in": {}, "is": {}, "lambda": {}, "nonlocal": {},
	"not": {}, "or": {}, "pass": {}, "raise": {}, "return": {}, "try": {},
	"while": {}, "with": {}, "yield": {},
}

// ValidIdentifier reports whether name can appear as a class or field name
// in generated source.
func ValidIdentifier(name string) bool {
	if !identRegex.MatchString(name) {
		return false
	}
	_, reserved := reservedNames[name]
	return !reserved
}

// CheckIdentifier returns a FaultInvalidIdentifier describing what the bad
// name was used for, or nil when the name is valid.
func CheckIdentifier(name, usedAs string) *Fault {
	if ValidIdentifier(name) {
		return nil
	}
	return NewFault(FaultInvalidIdentifier, "%s %q is not a valid identifier", usedAs, name)
}
