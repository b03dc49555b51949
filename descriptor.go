package settingsx

import (
	"reflect"
	"strings"
)

// Descriptor is the declared metadata of a settings type.
type Descriptor struct {
	Type    reflect.Type
	Section string
	Mode    Mode
}

// DescriptorOf reads the descriptor from t's Settings marker tag.
// A missing marker, a blank section, or a missing or unknown validation mode
// is a *DescriptorError.
func DescriptorOf(t reflect.Type) (Descriptor, error) {
	f, ok := markerField(t)
	if !ok {
		return Descriptor{}, &DescriptorError{Type: t, Reason: "does not embed settingsx.Settings"}
	}

	section := strings.TrimSpace(f.Tag.Get("section"))
	if section == "" {
		return Descriptor{}, &DescriptorError{Type: t, Reason: "section tag is missing or blank"}
	}

	raw, ok := f.Tag.Lookup("validation")
	if !ok {
		return Descriptor{}, &DescriptorError{Type: t, Reason: "validation tag is missing"}
	}
	mode, err := ParseMode(raw)
	if err != nil {
		return Descriptor{}, &DescriptorError{Type: t, Reason: err.Error()}
	}

	return Descriptor{Type: t, Section: section, Mode: mode}, nil
}
