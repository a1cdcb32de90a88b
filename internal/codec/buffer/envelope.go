// Package buffer implements the chunked binary envelope (spec §4.5, §3):
// packing an arbitrary byte payload into up to four named binary cells
// per property, with deterministic reassembly on read. Every
// buffer-based and encrypted type composes with this envelope instead
// of re-deriving the chunking rules.
//
// Grounded on the teacher's internal/core/db/queries.go, which loads and
// reassembles a multi-file embedded SQL source by walking a fixed naming
// convention (path -> combined string) the same way this envelope walks
// __buf0_P..__bufN-1_P -> one byte slice.
package buffer

import (
	"encoding/base64"
	"fmt"

	"github.com/solatis/typecodec/internal/codec"
)

// ChunkSize is the maximum raw byte size of a single binary cell (64 KiB).
const ChunkSize = 64 * 1024

// MaxPayload is the maximum total raw payload size per property (256 KiB),
// which bounds the chunk count to 4.
const MaxPayload = 256 * 1024

func chunkCellName(property string, i int) string {
	return fmt.Sprintf("__buf%d_%s", i, property)
}

func chunkCountCellName(property string) string {
	return fmt.Sprintf("__bufchunks_%s", property)
}

// Write splits payload into ceil(len(payload)/ChunkSize) chunks of at
// most ChunkSize raw bytes each, base64-encoding each chunk into its own
// __bufI_<property> cell (annotated Edm.Binary) and recording the chunk
// count in __bufchunks_<property>.
func Write(row codec.Row, property string, payload []byte, typeName string) error {
	if len(payload) > MaxPayload {
		return codec.NewError(codec.SizeExceeded, typeName, property,
			fmt.Errorf("payload is %d bytes, exceeds %d byte limit", len(payload), MaxPayload))
	}

	chunks := chunkCount(len(payload))
	for i := 0; i < chunks; i++ {
		start := i * ChunkSize
		end := start + ChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		row[chunkCellName(property, i)] = base64.StdEncoding.EncodeToString(payload[start:end])
		row[codec.AnnotationKey(chunkCellName(property, i))] = codec.EdmBinary
	}
	row[chunkCountCellName(property)] = float64(chunks)
	return nil
}

func chunkCount(payloadLen int) int {
	if payloadLen == 0 {
		return 0
	}
	return (payloadLen + ChunkSize - 1) / ChunkSize
}

// Read reassembles the raw payload previously written by Write:
// reads the chunk count, base64-decodes each chunk cell, and
// concatenates them in index order.
func Read(row codec.Row, property string, typeName string) ([]byte, error) {
	rawCount, ok := row[chunkCountCellName(property)]
	if !ok {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property,
			fmt.Errorf("missing chunk count cell %s", chunkCountCellName(property)))
	}

	chunks, err := toInt(rawCount)
	if err != nil {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property,
			fmt.Errorf("chunk count cell is not numeric: %w", err))
	}
	if chunks < 0 || chunks > 4 {
		return nil, codec.NewError(codec.DecodeFailure, typeName, property,
			fmt.Errorf("chunk count %d out of expected range [0,4]", chunks))
	}

	var out []byte
	for i := 0; i < chunks; i++ {
		cellName := chunkCellName(property, i)
		rawCell, ok := row[cellName]
		if !ok {
			return nil, codec.NewError(codec.DecodeFailure, typeName, property,
				fmt.Errorf("missing chunk cell %s", cellName))
		}
		encoded, ok := rawCell.(string)
		if !ok {
			return nil, codec.NewError(codec.DecodeFailure, typeName, property,
				fmt.Errorf("chunk cell %s is not a string", cellName))
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, codec.NewError(codec.DecodeFailure, typeName, property,
				fmt.Errorf("chunk cell %s is not valid base64: %w", cellName, err))
		}
		out = append(out, decoded...)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}
