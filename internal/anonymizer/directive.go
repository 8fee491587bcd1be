package anonymizer

import (
	"strings"
)

// HashTagSeparator splits the hash-tags argument.
const HashTagSeparator = ";"

// Directive says which fields to overwrite and which tags to hash. It is
// built once per run and applied to every file.
type Directive struct {
	// PatientName replaces both PatientName and PatientID when set.
	PatientName string
	// PatientAge replaces PatientAge verbatim when set.
	PatientAge string
	// HashTags are tag identifiers whose values are replaced by their digest.
	HashTags []string
}

// NewDirective builds a directive from the raw command line values.
func NewDirective(patientName, patientAge, hashTags string) Directive {
	return Directive{
		PatientName: patientName,
		PatientAge:  patientAge,
		HashTags:    SplitHashTags(hashTags),
	}
}

// SplitHashTags splits a "PatientName;PatientID;" list, dropping empty items.
// Items are used as given, so " PatientName" does not name a tag.
func SplitHashTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, HashTagSeparator) {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
