// Package realtime is the entry point for the signaling client.
//
// A Session owns one Connection Manager and the whiteboard and telemedicine
// adapters built on it. Applications create a Session at their composition
// root and pass it where it is needed:
//
//	s, err := realtime.NewSession(cfg, logger)
//	if err != nil { ... }
//	defer s.Close()
//	s.Telemedicine().JoinRoom("room1", 42, 7, "Dr. Lee")
//
// For call sites that cannot be handed a Session, SetDefault installs one
// behind the package-level functions (Connect, SendMessage, JoinRoom, ...).
// Without a default session those functions log a warning and return zero
// values; they never panic.
package realtime
