package session

import fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"

var (
	ErrInvalidCredentials = fwzerrors.ErrInvalidCredentials
	ErrTokenInvalid       = fwzerrors.ErrTokenInvalid
	ErrRejected           = fwzerrors.ErrRejected
	ErrNetwork            = fwzerrors.ErrNetwork
	ErrStorage            = fwzerrors.ErrStorage
	ErrNotFound           = fwzerrors.ErrNotFound
	ErrSuperseded         = fwzerrors.ErrSuperseded
	ErrClosed             = fwzerrors.ErrClosed
	ErrAlreadyStarted     = fwzerrors.ErrAlreadyStarted
	ErrNotAuthenticated   = fwzerrors.ErrNotAuthenticated
)
