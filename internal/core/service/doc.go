// Package service provides domain services for the discount service.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for storage dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - CodeService: code generation and single-use redemption
//
// Services are stateless and thread-safe. Rule violations are reported as
// result values, never as errors.
package service
