// Package filter builds read predicates over stored log entries.
//
// Structured conditions (level set, client, session, since) AND together;
// absent conditions impose no constraint, and an unparsable since value
// fails open so a malformed filter can never silently hide all logs. An
// optional CEL expression can be AND-ed in for field-level filtering; an
// expression that does not compile is reported to the caller instead.
package filter
