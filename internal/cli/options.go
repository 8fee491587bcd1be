package cli

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dicom-deid/internal/scrubber"
)

// DefaultOutputDir is created next to the program.
const DefaultOutputDir = "anonymizedOut"

// Patterns the command line values are checked against. Age and hash-tags
// only need a matching prefix unless strict validation is requested.
var (
	inputPattern       = regexp.MustCompile(`^[a-zA-Z0-9\-_.]*$`)
	patientNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.]*$`)
	patientAgePattern  = regexp.MustCompile(`^[0-9]{3}[MWY]`)
	hashTagsPattern    = regexp.MustCompile(`^[a-zA-Z0-9\-_.;]`)

	strictAgePattern      = regexp.MustCompile(`^[0-9]{3}[MWY]$`)
	strictHashTagsPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.;,()]*$`)
)

// Options holds CLI configuration options
type Options struct {
	Input       string `json:"input"`
	HashTags    string `json:"hash-tags"`
	PatientName string `json:"patient-name"`
	PatientAge  string `json:"patient-age"`

	// Strict anchors the age and hash-tags patterns at both ends.
	Strict bool `json:"-"`

	AnonymizerBin   string `json:"-"`
	KeepPrivateTags bool   `json:"-"`

	// OutputDir is a name under BaseDir, or an absolute path.
	OutputDir string `json:"-"`
	// BaseDir defaults to the directory of the executable.
	BaseDir string `json:"-"`

	// Argv is logged at start and end of the run.
	Argv []string `json:"-"`
}

// DefaultOptions returns options with the defaults of the command line.
func DefaultOptions() Options {
	return Options{
		AnonymizerBin:   scrubber.DefaultBinary,
		KeepPrivateTags: true,
		OutputDir:       DefaultOutputDir,
	}
}

// ValidationError carries one message per rejected option.
type ValidationError struct {
	Errs validation.Errors
}

func (e *ValidationError) Error() string {
	return "invalid arguments: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the diagnostics ordered by option name.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Errs))
	for k := range e.Errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Errs[k].Error())
	}
	return msgs
}

// Validate checks every value against its pattern. All failures are
// reported together.
func (o *Options) Validate() error {
	agePattern, tagsPattern := patientAgePattern, hashTagsPattern
	if o.Strict {
		agePattern, tagsPattern = strictAgePattern, strictHashTagsPattern
	}

	err := validation.ValidateStruct(o,
		validation.Field(&o.Input,
			validation.Required.Error("input directory is required"),
			validation.Match(inputPattern).Error("filename should be in this pattern: "+inputPattern.String()),
		),
		validation.Field(&o.PatientAge,
			validation.Match(agePattern).Error("Age format is bad: should be in this pattern: "+agePattern.String()),
		),
		validation.Field(&o.PatientName,
			validation.Match(patientNamePattern).Error("Patient name is bad, should be in this pattern: "+patientNamePattern.String()),
		),
		validation.Field(&o.HashTags,
			validation.Match(tagsPattern).Error("Tags should be in this pattern: PatientName;PatientID or XXXX,XXXX;XXXX,XXXX"),
		),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{Errs: errs}
	}
	return err
}
