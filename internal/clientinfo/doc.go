// Package clientinfo derives client metadata recorded with each login: a
// canonical network address and a human-readable device label.
//
// Every function here is total. Bad or missing input produces a fallback
// value, never an error.
package clientinfo
