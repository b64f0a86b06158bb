// Package store defines the narrow persistence interfaces the account and
// key-lifecycle core depends on. Implementations live in subpackages; the
// gorm implementation is the production one.
//
// The soft-delete rule is enforced at this boundary: no interface exposes a
// way to physically delete an account or key row.
package store
