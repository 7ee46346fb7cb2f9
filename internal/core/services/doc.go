// Package services contains the orchestration layer: the sync session
// driving pagination and normalization for subscriptions, and the
// source adapter for one-off fetches.
package services
