package normalize

import (
	"errors"

	"github.com/okian/pacematch/internal/domain/finishtime"
)

// Sentinel kinds for row rejections. ErrFormat is shared with the time codec so
// callers can match either source with a single errors.Is.
var (
	ErrFormat       = finishtime.ErrFormat
	ErrMissingField = errors.New("missing required field")
)
