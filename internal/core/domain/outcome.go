package domain

// MirrorStatus is the terminal state of one relay run.
type MirrorStatus string

const (
	// StatusSuccess means bytes were relayed and the destination accepted them.
	StatusSuccess MirrorStatus = "success"

	// StatusAlreadyExists means a matching file was found at the destination
	// and no bytes were transferred.
	StatusAlreadyExists MirrorStatus = "already_exists"

	// StatusFailed means the relay did not complete.
	StatusFailed MirrorStatus = "failed"
)

// MatchKind identifies which duplicate-detection tier matched.
type MatchKind string

const (
	// MatchExact is a case-insensitive raw name match.
	MatchExact MatchKind = "exact"

	// MatchNormalized is a match on normalized names.
	MatchNormalized MatchKind = "normalized"

	// MatchHeuristicMovie is a year-anchored core-title substring match.
	MatchHeuristicMovie MatchKind = "heuristic_movie"
)

// MirrorOutcome is the terminal result of one relay run. It is returned to
// the caller and never stored. A caller always receives an outcome; terminal
// failures are represented as data, not raised.
type MirrorOutcome struct {
	// Status is the terminal state.
	Status MirrorStatus

	// DestinationURL is the public URL of the mirrored file.
	// Non-empty whenever Status is Success or AlreadyExists.
	DestinationURL string

	// DestinationID is the destination's identifier for the file.
	DestinationID string

	// FileName is the resolved source file name.
	FileName string

	// SizeBytes is the resolved source file size.
	SizeBytes int64

	// MatchKind is set when Status is AlreadyExists.
	MatchKind MatchKind

	// ErrorMessage carries a human-readable description when Status is Failed.
	ErrorMessage string
}

// AlreadyExisted reports whether the run short-circuited on a duplicate.
func (o MirrorOutcome) AlreadyExisted() bool {
	return o.Status == StatusAlreadyExists
}
