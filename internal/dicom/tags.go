package dicom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// hexTagRegex accepts "0010,0010", "(0010,0010)" and "00100010".
var hexTagRegex = regexp.MustCompile(`^\(?([0-9a-fA-F]{4}),?([0-9a-fA-F]{4})\)?$`)

// ResolveTag maps a tag identifier to a tag. The identifier is either a
// dictionary keyword such as "PatientName" or a hex group/element pair.
func ResolveTag(id string) (tag.Tag, error) {
	if strings.TrimSpace(id) == "" {
		return tag.Tag{}, fmt.Errorf("empty tag identifier")
	}

	if m := hexTagRegex.FindStringSubmatch(id); m != nil {
		group, _ := strconv.ParseUint(m[1], 16, 16)
		element, _ := strconv.ParseUint(m[2], 16, 16)
		return tag.Tag{Group: uint16(group), Element: uint16(element)}, nil
	}

	info, err := tag.FindByName(id)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("unknown tag keyword %q: %w", id, err)
	}
	return info.Tag, nil
}
