// Package fantia implements the Fantia source: the JSON API client,
// typed wire decoding, URL resolution, cursor-based creator pagination
// and normalization of remote posts into local entities.
package fantia
