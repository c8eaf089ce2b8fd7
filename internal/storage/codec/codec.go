// Package codec serializes settlement.State snapshots for the database.DB
// backends. Encoding uses ugorji's binary codec the way the teacher encodes
// its wire and node-store objects; the encoded bytes are then LZ4-compressed
// the way internal/storage/nodestore/compression does for stored ledger
// nodes, since State snapshots are large repeated-structure maps that
// compress well.
package codec

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"
)

var handle = &codec.BincHandle{}

// Encode binary-encodes v and compresses the result with LZ4.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, handle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	raw := buf.Bytes()

	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: compress: %w", err)
	}
	if n == 0 {
		// Incompressible input: lz4 reports this by writing nothing: fall
		// back to storing the block uncompressed with a sentinel length.
		return append([]byte{0}, raw...), nil
	}
	out := make([]byte, 0, n+1)
	out = append(out, 1)
	out = append(out, compressed[:n]...)
	return out, nil
}

// Decode reverses Encode into v, which must be a pointer.
func Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("codec: empty input")
	}
	flag, body := data[0], data[1:]

	var raw []byte
	switch flag {
	case 0:
		raw = body
	case 1:
		// The decompressed size isn't stored; grow the destination buffer
		// until UncompressBlock stops reporting a short buffer.
		dst := make([]byte, len(body)*4+64)
		var err error
		var n int
		for attempt := 0; attempt < 8; attempt++ {
			n, err = lz4.UncompressBlock(body, dst)
			if err == nil {
				break
			}
			dst = make([]byte, len(dst)*2)
		}
		if err != nil {
			return fmt.Errorf("codec: decompress: %w", err)
		}
		raw = dst[:n]
	default:
		return fmt.Errorf("codec: unknown frame flag %d", flag)
	}

	dec := codec.NewDecoderBytes(raw, handle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("codec: decode: %w", err)
	}
	return nil
}
