// Package device models the four kinds of Loxone light controls: switches,
// dimmers, colour pickers and light controllers (scene controllers).
//
// A device owns a fixed set of tracked identifiers, each tagged with a role.
// Inbound values are applied per role with ApplyEvent, which reports whether
// anything a consumer can observe has changed. Positions are kept on the
// miniserver's 0.0-100.0 scale and converted to 0-255 only when read.
//
// Devices are not safe for concurrent use; callers serialise access.
package device
