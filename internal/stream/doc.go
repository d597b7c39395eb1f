// Package stream serves engine frames to remote renderers over websocket
// and exposes the click and parameter API over HTTP.
package stream
