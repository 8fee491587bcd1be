package dicom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SetString sets a string value for a tag in the dataset. The element is
// created, in tag order, when the dataset does not carry it yet.
func (d *Dataset) SetString(t tag.Tag, value string) error {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		newElem, err := dicom.NewElement(t, []string{value})
		if err != nil {
			return fmt.Errorf("could not create element %s: %w", t, err)
		}
		d.insert(newElem)
		return nil
	}

	newValue, err := dicom.NewValue([]string{value})
	if err != nil {
		return fmt.Errorf("could not create value: %w", err)
	}

	// Keep the VR the file was written with
	newElem := &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    elem.ValueRepresentation,
		RawValueRepresentation: elem.RawValueRepresentation,
		ValueLength:            uint32(len(value)),
		Value:                  newValue,
	}

	for i, e := range d.Data.Elements {
		if e.Tag == t {
			d.Data.Elements[i] = newElem
			return nil
		}
	}
	return nil
}

// insert places elem before the first element with a larger tag.
func (d *Dataset) insert(elem *dicom.Element) {
	idx := len(d.Data.Elements)
	for i, e := range d.Data.Elements {
		if tagLess(elem.Tag, e.Tag) {
			idx = i
			break
		}
	}
	d.Data.Elements = append(d.Data.Elements, nil)
	copy(d.Data.Elements[idx+1:], d.Data.Elements[idx:])
	d.Data.Elements[idx] = elem
}

func tagLess(a, b tag.Tag) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Element < b.Element
}

// Save writes the DICOM dataset to a file. The dataset is encoded into a
// temporary file next to outputPath and renamed over it, so a failed encode
// leaves an existing file untouched.
func (d *Dataset) Save(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(outputPath); err == nil {
		mode = info.Mode().Perm()
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	tmpPath := file.Name()
	defer os.Remove(tmpPath)

	// Write DICOM with relaxed verification (many real-world DICOM files
	// don't strictly follow VR specifications)
	if err := dicom.Write(file, d.Data,
		dicom.SkipVRVerification(),
		dicom.SkipValueTypeVerification(),
		dicom.DefaultMissingTransferSyntax(),
	); err != nil {
		file.Close()
		return fmt.Errorf("could not write DICOM %s: %w", outputPath, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("could not set mode on %s: %w", outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("could not replace %s: %w", outputPath, err)
	}
	return nil
}

// SaveInPlace overwrites the file the dataset was read from.
func (d *Dataset) SaveInPlace() error {
	if d.FilePath == "" {
		return fmt.Errorf("dataset has no source path")
	}
	return d.Save(d.FilePath)
}
