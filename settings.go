package settingsx

import (
	"fmt"
	"reflect"
	"strings"

	"go.eggybyte.com/settingsx/optionsx"
)

// Settings marks a struct as a settings type when embedded as an anonymous
// field. The field's tag declares the descriptor:
//
//	settingsx.Settings `section:"Sample" validation:"lazy"`
type Settings struct{}

var settingsType = reflect.TypeOf(Settings{})

// Mode controls when a settings type is validated.
type Mode int

const (
	// ModeNone never validates.
	ModeNone Mode = iota
	// ModeLazy validates when the value is first read and after each reload.
	ModeLazy
	// ModeStartup validates once during application startup, and lazily after.
	ModeStartup
)

var modeNames = [...]string{ModeNone: "none", ModeLazy: "lazy", ModeStartup: "startup"}

// String returns the tag spelling of the mode.
func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a validation mode, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return ModeNone, fmt.Errorf("unknown validation mode %q (want none, lazy or startup)", s)
}

// DefaultFailureMessage is reported by a validator marked without a message.
const DefaultFailureMessage = optionsx.DefaultFailureMessage

// hasMarker reports whether t is a struct embedding Settings directly.
func hasMarker(t reflect.Type) bool {
	_, ok := markerField(t)
	return ok
}

func markerField(t reflect.Type) (reflect.StructField, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == settingsType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
