package protocol

const (
	// Protocol/transport validation.
	ErrBadRequest = "E_BAD_REQUEST"

	// Session state.
	ErrNotJoined     = "E_NOT_JOINED"
	ErrAlreadyJoined = "E_ALREADY_JOINED"

	// Policy layer.
	ErrBadNickname = "E_BAD_NICKNAME"
	ErrOutOfBounds = "E_OUT_OF_BOUNDS"
	ErrTooFar      = "E_TOO_FAR"

	// Stale/unknown references.
	ErrUnknownPlayer    = "E_UNKNOWN_PLAYER"
	ErrUnknownItem      = "E_UNKNOWN_ITEM"
	ErrAlreadyCollected = "E_ALREADY_COLLECTED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:       {},
	ErrNotJoined:        {},
	ErrAlreadyJoined:    {},
	ErrBadNickname:      {},
	ErrOutOfBounds:      {},
	ErrTooFar:           {},
	ErrUnknownPlayer:    {},
	ErrUnknownItem:      {},
	ErrAlreadyCollected: {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
