// Package dicomtest writes small DICOM files for tests.
package dicomtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"github.com/suyashkumar/dicom/pkg/uid"
)

// Element is a tag with its values, a []string or []int.
type Element struct {
	Tag    tag.Tag
	Values any
}

// Str is shorthand for a single-valued string element.
func Str(t tag.Tag, value string) Element {
	return Element{Tag: t, Values: []string{value}}
}

// Int is shorthand for an integer element.
func Int(t tag.Tag, values ...int) Element {
	return Element{Tag: t, Values: values}
}

// WriteFile writes a minimal Explicit VR Little Endian file holding the file
// meta header plus the given elements, which must be in tag order.
func WriteFile(tb testing.TB, path string, elems ...Element) {
	tb.Helper()

	all := []Element{
		Str(tag.MediaStorageSOPClassUID, "1.2.840.10008.5.1.4.1.1.7"),
		Str(tag.MediaStorageSOPInstanceUID, "1.2.3.4.5.6.7"),
		Str(tag.TransferSyntaxUID, uid.ExplicitVRLittleEndian),
	}
	all = append(all, elems...)

	ds := dicom.Dataset{}
	for _, e := range all {
		elem, err := dicom.NewElement(e.Tag, e.Values)
		if err != nil {
			tb.Fatalf("new element %s: %v", e.Tag, err)
		}
		ds.Elements = append(ds.Elements, elem)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := dicom.Write(f, ds, dicom.SkipVRVerification()); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

// Patient writes a file with the usual patient module fields.
func Patient(tb testing.TB, path, name, id, age string) {
	tb.Helper()
	WriteFile(tb, path,
		Str(tag.PatientName, name),
		Str(tag.PatientID, id),
		Str(tag.PatientAge, age),
	)
}
