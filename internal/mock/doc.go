/*
Package mock contains mock implementations of the interfaces in pkg/,
intended for use in unit-tests.

Mocks are generated by mockgen into `./pkg/...`, mirroring the layout of
the root-level `pkg/` path.  Each mock package is named `mock_*`, where
`*` is the name of the mocked package.
*/
package mock
