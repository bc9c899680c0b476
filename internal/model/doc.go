// Package model contains the shared interfaces and data structures.
//
// # Criteria for adding a type to this package
//
// This package should contain two kinds of types:
//
// 1. important interfaces that are shared by several packages
// within the codebase, with the objective of separating unrelated
// pieces of code and making unit testing easier;
//
// 2. important pieces of data that are shared across different
// packages (e.g., the results produced by the probers).
//
// In general, this package should not contain logic, unless
// this logic is strictly related to data structures and we
// cannot implement this logic elsewhere.
//
// # Content of this package
//
// - logger.go: generic definition of an apex/log compatible logger;
//
// - netx.go: network interfaces used by the probers;
//
// - tally.go: ordered sets and counters used to accumulate observations;
//
// - result.go: the results emitted by the DNS and HTTP probers.
package model
