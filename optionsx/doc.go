// Package optionsx hosts typed configuration slots for settings types.
//
// # Overview
//
// A Collection holds one Slot per settings type. A Builder, returned by
// AddOptions, binds the slot to a configx section and attaches validation
// rules: predicates, `validate` struct tags through go-playground/validator,
// and an eager flag checked by Collection.ValidateOnStart.
//
// # Features
//
//   - Lazy bind-and-validate on first read, cached per configuration snapshot
//   - Result form (Current) for background readers and error form (Value)
//   - Reload and OnChange driven by configx.Manager updates
//   - Catalog of the generic operations with their parameter shapes
//
// # Usage
//
//	c := optionsx.NewCollection()
//	b := optionsx.AddOptions[SampleConfiguration](c)
//	if err := optionsx.Bind(b, mgr.Section("Sample")); err != nil { return err }
//	optionsx.ValidateWithMessage(b, noVowels, "SampleString can't contain vowels.")
//	optionsx.ValidateOnStart(b)
//
//	cfg, err := optionsx.MustGet[SampleConfiguration](c).Value()
//
// # Layer
//
// optionsx depends on core and configx.
package optionsx
