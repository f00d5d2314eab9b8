// Package accounts implements the account and credential lifecycle for a
// small user-management backend: registration, profile updates, password
// changes, activity-based active/inactive classification, and JWT issuance
// after authentication events.
//
// The package is organized around three command handlers
// (RegisterProfileHandler, UpdateProfileHandler, ChangePasswordHandler),
// each of which runs as a single transaction against the identity and
// profile repositories. Validation failures raised while registering or
// updating are collected into a ValidationErrors list and reported
// together; lookups and credential checks fail fast.
//
// Storage is bun-backed; the RepositoryManager exposes the identity,
// profile, and activity repositories plus RunInTx for atomic multi-table
// writes. Active/inactive status is never persisted: the ActivityEngine
// computes it from the most recent activity event and an injected clock.
package accounts
