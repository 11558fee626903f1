package prompt

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Tag pair bounding the machine-extractable payload in a model reply.
const (
	beginMarker = "<CHANGED_FILE_CONTENTS>"
	endMarker   = "</CHANGED_FILE_CONTENTS>"
)

// ErrNoContent reports a reply that does not contain a well-formed
// delimited content block. Callers treat it as a failed attempt.
var ErrNoContent = errors.New("no delimited file content in completion")

// Extract returns the trimmed text strictly between the first begin marker
// and the first end marker that follows it. The end marker is searched only
// in the text after the begin marker, so an end marker that appears earlier
// in the reply (quoted in the model's commentary, say) is ignored.
//
// Extract never synthesizes fallback content: a reply missing either marker
// fails with ErrNoContent.
func Extract(completion string) (string, error) {
	begin := strings.Index(completion, beginMarker)
	if begin < 0 {
		return "", errors.Errorf("begin marker %q not found: %w", beginMarker, ErrNoContent)
	}

	rest := completion[begin+len(beginMarker):]
	end := strings.Index(rest, endMarker)
	if end < 0 {
		return "", errors.Errorf("end marker %q not found after begin marker: %w", endMarker, ErrNoContent)
	}

	return strings.TrimSpace(rest[:end]), nil
}
