package assetcache

import "fmt"

// HistoryEntry - one persisted record linking a generated asset to the
// request metadata that produced it. Ts doubles as identity and sort key.
type HistoryEntry struct {
	Ts     int64  `json:"ts"`
	URI    string `json:"uri"`
	Ref    string `json:"ref"`
	Prompt string `json:"prompt"`
}

// DecodeError - a data: locator carried an unparseable base64 payload
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode inline image payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// DownloadError - a remote locator answered with a non-2xx status
type DownloadError struct {
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed: %d", e.Status)
}
