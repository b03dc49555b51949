package main

import (
	"strings"
	"time"

	"go.eggybyte.com/settingsx"
)

// SampleConfiguration is validated at startup. SampleString must not contain
// vowels and a SampleKey of "one" requires SampleNumber to be 1.
type SampleConfiguration struct {
	settingsx.Settings `section:"Sample" validation:"startup"`

	SampleKey    string `validate:"required,max=20"`
	SampleNumber int    `validate:"gte=0,lte=10"`
	SampleString string
}

func (s SampleConfiguration) NoVowels() bool {
	return !strings.ContainsAny(strings.ToLower(s.SampleString), "aeiou")
}

func (s SampleConfiguration) OneMeansOne() bool {
	return s.SampleKey != "one" || s.SampleNumber == 1
}

// ServerConfiguration is validated when first read.
type ServerConfiguration struct {
	settingsx.Settings `section:"Server" validation:"lazy"`

	Addr         string        `default:":8080" validate:"required"`
	ReadTimeout  time.Duration `config:"read_timeout" default:"5s"`
	AllowOrigins []string      `config:"allow_origins"`
}

func (s ServerConfiguration) TimeoutPositive() bool {
	return s.ReadTimeout > 0
}

var _ = settingsx.Register[SampleConfiguration](settingsx.Default.Module("sample"),
	settingsx.Validator("NoVowels", "SampleString can't contain vowels."),
	settingsx.Validator("OneMeansOne", "SampleNumber must be 1 when SampleKey is 'one'"))

var _ = settingsx.Register[ServerConfiguration](settingsx.Default.Module("server"),
	settingsx.Validator("TimeoutPositive", ""))
