// Package logx configures tickrun's structured logging.
//
// It is a small wrapper (logx.Logger) on top of zerolog that keeps:
//   - Console output readable (short timestamp + key=value fields)
//   - File output JSON-structured
//   - High-frequency tick logging bounded (rate-limited below Warn)
//
// The core scheduling package (pkg/routine) does not log; logx is for the
// host side: loop, triggers, journal, config.
package logx
