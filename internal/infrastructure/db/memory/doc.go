// Package memory provides process-local implementations of the repository
// ports. They back the STORAGE=memory mode and the service tests; data does
// not survive a restart.
package memory
