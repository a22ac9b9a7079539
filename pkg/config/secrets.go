package config

import "log/slog"

// LogValue redacts MasterSecret and MasterSalt so that passing a Config or
// SecurityConfig to slog never writes key material to a log sink, even at
// DEBUG level or via %+v through an attr. The non-secret identity fields
// (sender_id, recipient_id, id_context) are kept since they're already
// logged in cleartext on the wire (§3) and are useful for correlating
// protect/unprotect log lines with a specific context.
func (s SecurityConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("sender_id", s.SenderID),
		slog.String("recipient_id", s.RecipientID),
		slog.String("id_context", s.IDContext),
		slog.Int("replay_window_size", s.ReplayWindowSize),
		slog.Bool("master_secret_set", s.MasterSecret != ""),
		slog.Bool("master_salt_set", s.MasterSalt != ""),
	)
}

// LogValue redacts the embedded SecurityConfig via its own LogValue.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("logging", c.Logging),
		slog.Any("metrics", c.Metrics),
		slog.Any("security", c.Security),
		slog.Any("store", c.Store),
	)
}
