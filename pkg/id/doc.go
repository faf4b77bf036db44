// Package id generates compact, time-ordered string identifiers.
//
// Identifiers have the form "<prefix>-<hex ms timestamp>-<hex random>",
// which keeps them roughly sortable by creation time while staying cheap
// to generate and human-scannable in logs and URLs.
package id
