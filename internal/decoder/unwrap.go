package decoder

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
)

// Unwrap stages, for PayloadError.Stage.
const (
	StageBase64  = "base64"
	StageInflate = "inflate"
)

// PayloadError reports a payload that could not be unwrapped. It is
// per-payload and recoverable: the caller logs it and moves on to the next
// player with zero records.
type PayloadError struct {
	Stage  string
	Player string
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("decode payload for %q: %s stage: %v", e.Player, e.Stage, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// Unwrap turns a markets64 string into the flat byte buffer the scanners
// operate on: standard base64 decode, then zlib inflate. Pure function of
// its input; the returned buffer is owned by the caller.
func Unwrap(player, markets64 string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(markets64)
	if err != nil {
		return nil, &PayloadError{Stage: StageBase64, Player: player, Err: err}
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &PayloadError{Stage: StageInflate, Player: player, Err: err}
	}
	defer zr.Close()

	buf, err := io.ReadAll(zr)
	if err != nil {
		// Truncated or corrupt stream past the header.
		return nil, &PayloadError{Stage: StageInflate, Player: player, Err: err}
	}
	return buf, nil
}
