package media

import (
	"errors"
	"regexp"
)

// Kind classifies failures so the HTTP layer can map them to a status code
// without inspecting error text.
type Kind string

const (
	KindMissingInput          Kind = "missing_input"
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindExtraction            Kind = "extraction"
	KindExtractorUnavailable  Kind = "extractor_unavailable"
	KindArtifactNotFound      Kind = "artifact_not_found"
	KindTranscode             Kind = "transcode"
	KindTranscodeTimeout      Kind = "transcode_timeout"
	KindTranscoderUnavailable Kind = "transcoder_unavailable"
	KindInternal              Kind = "internal"
)

type kindError struct {
	kind   Kind
	detail string
	err    error
}

func (e *kindError) Error() string {
	return e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

// WrapKind tags err with a failure kind. A nil err returns nil.
func WrapKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// WrapKindDetail tags err with a kind and attaches diagnostic text that the
// HTTP layer may surface separately from the error message.
func WrapKindDetail(kind Kind, detail string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, detail: detail, err: err}
}

// KindOf returns the kind err was tagged with, or KindInternal.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// DetailOf returns the diagnostic text attached to err, if any.
func DetailOf(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.detail
	}
	return ""
}

var ansiRegexp = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes ANSI/VT100 escape sequences from text surfaced to
// callers. External tools color their stderr; clients get plain text.
func StripANSI(text string) string {
	return ansiRegexp.ReplaceAllString(text, "")
}
