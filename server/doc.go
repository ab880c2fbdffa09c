// Package server implements the HEM HTTP service.
//
// The service exposes key management, encryption, reveal and compute
// endpoints over JSON. Handlers translate engine errors into HTTP status
// codes, record an audit event for every state-changing request, and never
// expose key material beyond the public descriptor.
package server
