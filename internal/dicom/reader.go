package dicom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrTagNotFound is returned when a tag is absent from the dataset.
var ErrTagNotFound = errors.New("tag not found in dataset")

// ErrNotString is returned when a tag holds a non-string value.
var ErrNotString = errors.New("tag value is not a string")

// Dataset wraps a DICOM dataset for easier access
type Dataset struct {
	Data     dicom.Dataset
	FilePath string
}

// ReadDicom reads a DICOM file and returns the dataset.
func ReadDicom(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM %s: %w", path, err)
	}

	return &Dataset{
		Data:     ds,
		FilePath: path,
	}, nil
}

// HasTag reports whether the dataset carries the tag.
func (d *Dataset) HasTag(t tag.Tag) bool {
	_, err := d.Data.FindElementByTag(t)
	return err == nil
}

// LookupString returns the string value of a tag. Multi-valued elements are
// joined with the DICOM value delimiter.
func (d *Dataset) LookupString(t tag.Tag) (string, error) {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t, ErrTagNotFound)
	}
	if elem.Value == nil {
		return "", nil
	}
	if elem.Value.ValueType() != dicom.Strings {
		return "", fmt.Errorf("%s: %w", t, ErrNotString)
	}

	values, _ := elem.Value.GetValue().([]string)
	return strings.TrimRight(strings.Join(values, `\`), " \x00"), nil
}

// GetString returns a string value for a tag, or empty string if not found.
func (d *Dataset) GetString(t tag.Tag) string {
	v, err := d.LookupString(t)
	if err != nil {
		return ""
	}
	return v
}

// GetPatientName returns the patient name.
func (d *Dataset) GetPatientName() string {
	return d.GetString(tag.PatientName)
}

// GetPatientID returns the patient ID.
func (d *Dataset) GetPatientID() string {
	return d.GetString(tag.PatientID)
}

// GetPatientAge returns the patient age string, e.g. "010Y".
func (d *Dataset) GetPatientAge() string {
	return d.GetString(tag.PatientAge)
}
