package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	opts := DefaultOptions()
	opts.Input = "subjA"
	return opts
}

func TestValidate_Input(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"subjA", true},
		{"PIARK0010_510042_V02", true},
		{"study-1.2", true},
		{".", true},
		{"", false},
		{"subj A", false},
		{"../subjA", false},
		{"subjA/", false},
		{"subj$", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opts := validOptions()
			opts.Input = tt.input
			err := opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Errs, "input")
		})
	}
}

func TestValidate_PatientAge(t *testing.T) {
	tests := []struct {
		age    string
		ok     bool
		strict bool
	}{
		{"010Y", true, true},
		{"006M", true, true},
		{"012W", true, true},
		{"", true, true},
		{"10Y", false, false},
		{"010D", false, false},
		{"010y", false, false},
		{"010,", false, false},
		{" 010Y", false, false},
		// only a prefix has to match unless --strict is given
		{"010Yxyz", true, false},
		{"010Y ", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			opts := validOptions()
			opts.PatientAge = tt.age
			assert.Equal(t, tt.ok, opts.Validate() == nil, "default")

			opts.Strict = true
			assert.Equal(t, tt.strict, opts.Validate() == nil, "strict")
		})
	}
}

func TestValidate_PatientName(t *testing.T) {
	for name, ok := range map[string]bool{
		"ANON001":              true,
		"PIARK0010_510042_V02": true,
		"anon.subject-1":       true,
		"Jane Doe":             false,
		"DOE^JANE":             false,
		"ANON001;":             false,
	} {
		opts := validOptions()
		opts.PatientName = name
		assert.Equal(t, ok, opts.Validate() == nil, name)
	}
}

func TestValidate_HashTags(t *testing.T) {
	tests := []struct {
		tags   string
		ok     bool
		strict bool
	}{
		{"PatientName", true, true},
		{"PatientName;PatientID;", true, true},
		{"0010,0010;(0010,0020)", true, true},
		{";PatientName", true, true},
		{"@PatientName", false, false},
		{" PatientName", false, false},
		// prefix check only
		{"PatientName;@", true, false},
		{"Patient Name", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.tags, func(t *testing.T) {
			opts := validOptions()
			opts.HashTags = tt.tags
			assert.Equal(t, tt.ok, opts.Validate() == nil, "default")

			opts.Strict = true
			assert.Equal(t, tt.strict, opts.Validate() == nil, "strict")
		})
	}
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	opts := Options{
		Input:       "bad input",
		PatientName: "Jane Doe",
		PatientAge:  "ten",
		HashTags:    "#",
	}

	err := opts.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	msgs := verr.Messages()
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0], "Tags should be in this pattern")
	assert.Contains(t, msgs[1], "filename should be in this pattern")
	assert.Contains(t, msgs[2], "Age format is bad")
	assert.Contains(t, msgs[3], "Patient name is bad")
	assert.Contains(t, verr.Error(), "invalid arguments: ")
}
