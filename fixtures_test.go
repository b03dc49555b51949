package settingsx

import (
	"strings"

	"go.eggybyte.com/settingsx/configx"
)

type sampleConfiguration struct {
	Settings     `section:"Sample" validation:"startup"`
	SampleKey    string `validate:"required,max=20"`
	SampleNumber int    `validate:"gte=0,lte=10"`
	SampleString string
}

func (s sampleConfiguration) NoVowels() bool {
	return !strings.ContainsAny(strings.ToLower(s.SampleString), "aeiou")
}

func (s sampleConfiguration) OneMeansOne() bool {
	return s.SampleKey != "one" || s.SampleNumber == 1
}

const (
	noVowelsMessage    = "SampleString can't contain vowels."
	oneMeansOneMessage = "SampleNumber must be 1 when SampleKey is 'one'"
)

type lazyConfiguration struct {
	Settings `section:"Lazy" validation:"Lazy"`
	Name     string `validate:"required"`
}

func (l lazyConfiguration) NotAdmin() bool {
	return l.Name != "admin"
}

type silentConfiguration struct {
	Settings `section:"Silent" validation:"none"`
	Name     string `validate:"required"`
}

func (s silentConfiguration) NeverValid() bool { return false }

type pointerReceiver struct {
	Settings `section:"Pointer" validation:"lazy"`
}

func (p *pointerReceiver) Check() bool { return true }

type wrongShape struct {
	Settings `section:"Wrong" validation:"lazy"`
}

func (w wrongShape) Check(limit int) bool { return limit > 0 }

type checker struct{}

func (checker) Check() bool { return true }

type promotedValidator struct {
	Settings `section:"Promoted" validation:"lazy"`
	checker
}

type shadowing struct {
	Settings `section:"Shadowing" validation:"lazy"`
	checker
	Enabled bool
}

func (s shadowing) Check() bool { return s.Enabled }

type missingValidator struct {
	Settings `section:"Missing" validation:"lazy"`
}

type noSection struct {
	Settings `validation:"lazy"`
}

type badMode struct {
	Settings `section:"Bad" validation:"sometimes"`
}

type unmarked struct {
	Name string
}

type defaultsConfiguration struct {
	Settings `section:"Defaults" validation:"startup"`
	Host     string `default:"localhost" validate:"required"`
	Port     int    `default:"8080" validate:"gte=1,lte=65535"`
}

func sampleModule() *Module {
	return Register[sampleConfiguration](NewModule("sample"),
		Validator("NoVowels", noVowelsMessage),
		Validator("OneMeansOne", oneMeansOneMessage))
}

func sampleSource(key, number, str string) configx.Provider {
	return configx.FromMap(map[string]string{
		"Sample:SampleKey":    key,
		"Sample:SampleNumber": number,
		"Sample:SampleString": str,
	})
}
