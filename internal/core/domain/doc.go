// Package domain defines the core domain model of the discount service.
//
// Domain models are pure values without any IO dependencies or framework
// coupling. This package contains:
//
//   - Code: discount code format, alphabet and random generation
//   - UseResult: outcome of a redemption attempt
//   - Errors: Domain-specific error definitions
//
// Business-rule violations (bad count, bad length, unknown or used code) are
// never errors: they are explicit result values. DomainError is reserved for
// infrastructure and data-integrity failures.
package domain
