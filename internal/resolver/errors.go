package resolver

import "errors"

// Standard errors returned while building the resolver.
var (
	// ErrKpsewhichNotFound indicates the kpsewhich tool is not on PATH.
	ErrKpsewhichNotFound = errors.New("kpsewhich not found")

	// ErrUnsupportedDistribution indicates no ls-R file database exists
	// in any TEXMF root.
	ErrUnsupportedDistribution = errors.New("unsupported TeX distribution")

	// ErrCorruptDatabase indicates an ls-R file database could not be parsed.
	ErrCorruptDatabase = errors.New("corrupt file database")
)

// UserMessage converts a load failure into the message shown to the user.
// Unknown errors fall back to the generic text.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrKpsewhichNotFound):
		return "An error occurred while executing `kpsewhich`. " +
			"Please make sure that your distribution is in your PATH " +
			"environment variable and provides the `kpsewhich` tool."
	case errors.Is(err, ErrUnsupportedDistribution):
		return "Your TeX distribution is not supported."
	case errors.Is(err, ErrCorruptDatabase):
		return "The file database of your TeX distribution seems to be corrupt. " +
			"Please rebuild it and try again."
	default:
		return "An error occurred while building the TeX path resolver."
	}
}
