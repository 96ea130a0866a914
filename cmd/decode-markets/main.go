// Debug tool: decode a single markets64 blob and dump the records.
//
//	go run ./cmd/decode-markets -payload "$(cat blob.b64)"
//	cat blob.b64 | go run ./cmd/decode-markets
//	go run ./cmd/decode-markets -file blob.b64 -player "Jalen Hurts"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Vodeneev/vodeneevprops/internal/decoder"
)

func main() {
	payload := flag.String("payload", "", "markets64 blob (default: read from stdin)")
	file := flag.String("file", "", "read the blob from a file instead")
	player := flag.String("player", "unknown", "player name attached to the records")
	stride := flag.Int("stride", decoder.DefaultByteStride, "byte stride for the numeric scan")
	lookahead := flag.Int("lookahead", decoder.DefaultLookaheadWindow, "lookahead window in bytes")
	flag.Parse()

	if err := run(*payload, *file, *player, *stride, *lookahead); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(payload, file, player string, stride, lookahead int) error {
	if payload == "" && file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		payload = string(data)
	}
	if payload == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		payload = string(data)
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return fmt.Errorf("no payload given (use -payload, -file or stdin)")
	}

	opts := decoder.DefaultOptions()
	opts.ByteStride = stride
	opts.LookaheadWindow = lookahead

	dec, err := decoder.New(opts, nil)
	if err != nil {
		return err
	}

	records, stats, err := dec.Decode(player, payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "buffer: %d bytes, tokens: %d, candidates: %d kept / %d scanned, empty records: %d\n",
		stats.BufferBytes, stats.TokensFound, stats.CandidatesKept, stats.CandidatesScanned, stats.EmptyRecords)

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
