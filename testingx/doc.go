// Package testingx provides testing helpers and fakes for settingsx packages.
//
// # Overview
//
// testingx contains small utilities to speed up unit tests: a mock logger
// that records entries (including fields attached with With) and assertion
// helpers for core/errors codes.
//
// # Usage
//
//	logger := testingx.NewMockLogger(t)
//	_, err := settingsx.RegisterFromModule(c, module, src, settingsx.WithLogger(logger))
//	testingx.AssertError(t, err, errors.CodeInvalidArgument)
//	logger.AssertLogged("INFO", "settings registered")
//
// # Layer
//
// testingx is for tests only and depends on core packages.
package testingx
