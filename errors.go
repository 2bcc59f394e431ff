package spz

import "github.com/cockroachdb/errors"

// Kind discriminates the ways a codec operation can fail. Callers that need
// to branch on failure type should compare against these values rather than
// inspecting the error's formatted message.
type Kind int

const (
	// InvalidHeader covers a short buffer, wrong magic, or a reserved field
	// that was required to be zero but wasn't.
	InvalidHeader Kind = iota
	// UnsupportedVersion covers a header version outside {1, 2, 3}.
	UnsupportedVersion
	// TooManyPoints covers num_points above the 10,000,000 cap.
	TooManyPoints
	// UnsupportedShDegree covers a spherical-harmonics degree above 3.
	UnsupportedShDegree
	// InvalidData covers truncated or over-specified section lengths, and
	// any other length-invariant violation.
	InvalidData
	// DecompressionError covers a gzip/deflate failure while reading.
	DecompressionError
	// CompressionError covers a deflate failure while writing.
	CompressionError
	// InvalidFormat covers PLY header problems: a missing format line, a
	// missing required property, or an unsupported format value.
	InvalidFormat
	// ReadError covers a failure to read an input file, wrapped by
	// NewIOError.
	ReadError
	// WriteError covers a failure to write an output file, wrapped by
	// NewIOError.
	WriteError
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InvalidHeader:
		return "InvalidHeader"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case TooManyPoints:
		return "TooManyPoints"
	case UnsupportedShDegree:
		return "UnsupportedShDegree"
	case InvalidData:
		return "InvalidData"
	case DecompressionError:
		return "DecompressionError"
	case CompressionError:
		return "CompressionError"
	case InvalidFormat:
		return "InvalidFormat"
	case ReadError:
		return "ReadError"
	case WriteError:
		return "WriteError"
	default:
		return "UnknownKind"
	}
}

// Error is the discriminated error value returned by every codec stage. The
// Kind field lets callers classify a failure without parsing the message;
// Unwrap exposes the underlying cause (a compression library error, for
// instance) when there is one.
type Error struct {
	Kind Kind
	err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is a *Error with the same Kind, so that
// errors.Is(err, spz.ErrKind(spz.InvalidData)) style checks work without
// exposing the private err field.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// newError builds a *Error of the given kind from a formatted message, using
// cockroachdb/errors so the resulting error carries a stack trace and
// supports safe-detail redaction the way the teacher codebase's corruption
// errors do.
func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Newf(format, args...)}
}

// wrapError attaches a Kind to an existing error (typically one returned by a
// compression or I/O library) without discarding its message or stack.
func wrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Wrapf(cause, format, args...)}
}

// ErrKind constructs a sentinel usable with errors.Is to test only the kind
// of a returned error, e.g. errors.Is(err, spz.ErrKind(spz.InvalidData)).
func ErrKind(kind Kind) error {
	return &Error{Kind: kind, err: errors.New(kind.String())}
}

// NewIOError wraps a lower-level I/O failure (os.ReadFile, os.WriteFile) as
// a *Error of the given kind, for use by callers outside this package —
// the CLI shim deals only in file paths, while the core codec deals only
// in buffers (§7).
func NewIOError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, err: errors.Wrap(cause, kind.String())}
}
