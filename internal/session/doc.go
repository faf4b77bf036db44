// Package session tracks logical recording sessions. A manager always has
// exactly one current session; starting a new one stamps the end time on
// its predecessor. Session records are append-only and kept for the
// lifetime of the process.
package session
