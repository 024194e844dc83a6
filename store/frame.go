package store

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oy3o/idscodec"
)

const (
	frameMagic  uint32 = 0x49445331 // "IDS1"
	frameFormat uint8  = 1
)

// frameHeader precedes every stored value. It is big-endian so a frame
// can be inspected anywhere, even when the tree payload it carries only
// decodes on a platform with the writer's byte order.
type frameHeader struct {
	Magic      uint32
	Format     uint8
	Protocol   uint8 // idscodec.Version of the payload
	Reserved   uint16
	MetaLen    uint32
	PayloadLen uint64
	Checksum   uint64 // xxhash64 of the payload
}

type header = idscodec.Fixed[frameHeader]

// Meta describes one stored IDS.
type Meta struct {
	ID         string    `msgpack:"id"`
	Entry      string    `msgpack:"entry"`
	IDS        string    `msgpack:"ids"`
	Occurrence int       `msgpack:"occ"`
	Created    time.Time `msgpack:"created"`
	Size       int       `msgpack:"size"`
}

func encodeFrame(meta Meta, payload []byte) ([]byte, error) {
	rawMeta, err := msgpack.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("store: encode meta: %w", err)
	}
	h := header{Payload: frameHeader{
		Magic:      frameMagic,
		Format:     frameFormat,
		Protocol:   payload[0],
		MetaLen:    uint32(len(rawMeta)),
		PayloadLen: uint64(len(payload)),
		Checksum:   xxhash.Sum64(payload),
	}}
	out := make([]byte, h.Size(), h.Size()+len(rawMeta)+len(payload))
	if _, err := h.MarshalTo(out); err != nil {
		return nil, err
	}
	out = append(out, rawMeta...)
	return append(out, payload...), nil
}

func decodeFrame(frame []byte) (Meta, []byte, error) {
	var h header
	size := h.Size()
	if len(frame) < size {
		return Meta{}, nil, fmt.Errorf("%w: %d bytes is shorter than a header", ErrCorrupt, len(frame))
	}
	if err := h.UnmarshalBinary(frame[:size]); err != nil {
		return Meta{}, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	fh := h.Payload
	rest := uint64(len(frame) - size)
	switch {
	case fh.Magic != frameMagic:
		return Meta{}, nil, fmt.Errorf("%w: bad magic 0x%08x", ErrCorrupt, fh.Magic)
	case fh.Format != frameFormat:
		return Meta{}, nil, fmt.Errorf("%w: frame format %d", ErrCorrupt, fh.Format)
	case uint64(fh.MetaLen) > rest, fh.PayloadLen != rest-uint64(fh.MetaLen):
		return Meta{}, nil, fmt.Errorf("%w: lengths %d+%d do not match %d bytes", ErrCorrupt, fh.MetaLen, fh.PayloadLen, rest)
	}
	rawMeta := frame[size : size+int(fh.MetaLen)]
	payload := frame[size+int(fh.MetaLen):]
	if sum := xxhash.Sum64(payload); sum != fh.Checksum {
		return Meta{}, nil, fmt.Errorf("%w: checksum 0x%016x, want 0x%016x", ErrCorrupt, sum, fh.Checksum)
	}
	var meta Meta
	if err := msgpack.Unmarshal(rawMeta, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("%w: meta: %v", ErrCorrupt, err)
	}
	return meta, payload, nil
}
