// Package logging builds the zerolog loggers used across ogdash.
//
// Loggers are created once per command from config, attached to the command
// context, and retrieved with FromContext. Every request carries a trace ID
// (a ULID) that the trace hook stamps onto each event logged with .Ctx(ctx).
package logging
