package apperr

import "errors"

var (
	ErrMissingVault       = errors.New("vault path not set: pass --path or set OBSIDIAN_VAULT_PATH")
	ErrScannerUnavailable = errors.New("inline scanner unavailable")
	ErrUnknownEngine      = errors.New("unknown inline engine")
)
