// Package settingsx registers declarative settings types into an optionsx
// collection.
//
// # Overview
//
// A settings type is a struct that embeds the Settings marker. The marker's
// tag names the configuration section the type binds to and the validation
// mode (none, lazy or startup). Types are registered into a Module with
// Register, optionally marking value methods of shape func() bool as
// validators:
//
//	type SampleConfiguration struct {
//	  settingsx.Settings `section:"Sample" validation:"startup"`
//	  SampleKey    string `validate:"required,max=20"`
//	  SampleNumber int    `validate:"gte=0,lte=10"`
//	  SampleString string
//	}
//
//	func (s SampleConfiguration) NoVowels() bool { ... }
//
//	var _ = settingsx.Register[SampleConfiguration](settingsx.Default.Module("app"),
//	  settingsx.Validator("NoVowels", "SampleString can't contain vowels."))
//
// # Registration
//
// RegisterAllDiscovered, RegisterFromModules and RegisterFromModule discover
// the marked types and, for each one, create its slot, bind its section,
// attach the custom rules followed by the struct-tag schema rule and flag it
// for startup validation when asked to. The optionsx operations are generic,
// so each step is resolved through a Catalog against the published
// signatures and invoked with the concrete type.
//
// # Errors
//
// Every error is typed and carries a core/errors code: DescriptorError,
// AmbiguousValidatorError, InvalidValidatorShapeError, OperationResolutionError,
// BindingFailure and DuplicateRegistrationError. The first error aborts the
// registration call.
//
// # Layer
//
// settingsx depends on core, configx, optionsx and obsx.
package settingsx
