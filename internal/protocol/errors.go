package protocol

const (
	// Transport/parse layer.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command layer.
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrValidation  = "E_VALIDATION"
	ErrCollision   = "E_COLLISION"
	ErrUnknownZone = "E_UNKNOWN_ZONE"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrValidation:      {},
	ErrCollision:       {},
	ErrUnknownZone:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
