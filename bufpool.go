package idscodec

import (
	"bytes"
	"sync"
)

// bytesBufPool holds scratch buffers for draining a stream before a tree
// buffer can be parsed. Buffers start at one page.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, growChunk))
	},
}
