package domain

// UseResult is the outcome of a redemption attempt. Its numeric value is the
// response byte of the Use opcode.
type UseResult byte

const (
	UseSuccess     UseResult = 0
	UseNotFound    UseResult = 1
	UseAlreadyUsed UseResult = 2
	UseInvalid     UseResult = 3
)

// String returns the label used in logs and metrics.
func (r UseResult) String() string {
	switch r {
	case UseSuccess:
		return "success"
	case UseNotFound:
		return "not_found"
	case UseAlreadyUsed:
		return "already_used"
	case UseInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined results.
func (r UseResult) Valid() bool {
	return r <= UseInvalid
}
