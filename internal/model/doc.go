// Package model defines the wire-level data types shared by the relay:
// log entries, sessions, log levels, and the normalization rules applied
// to inbound payloads before they are stored.
package model
