// Package app provides the ingress use case: accept a publisher's document and fan it out.
//
// Sits between the HTTP handler and the broadcast registry. Parsing happens here so the
// transport layer only moves bytes.
package app
