// Package logx configures flux's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller), on stderr —
//     stdout belongs to the status line
//   - File output JSON-structured
//   - Optional systemd-journal sink (level-mapped, inert without a journal)
package logx
