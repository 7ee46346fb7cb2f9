// Package domain contains the core entities of the sync engine:
// normalized posts, file placeholders, tags and subscriptions.
// Domain types have no dependencies on storage or transport.
package domain
