package nbt

import "github.com/delaneyj/toolbelt"

// readChunk bounds how much the decoder reads ahead of what it has
// verified exists, so a forged length cannot force a huge allocation.
const readChunk = 32 << 10

// maxPooledScratch keeps one huge array from pinning memory in the pool.
const maxPooledScratch = 1 << 20

var (
	chunkPool = toolbelt.New(func() []byte { return make([]byte, readChunk) })
	// stringPool holds buffers for string payloads, whose length is capped
	// at 65535 by the wire format.
	stringPool = toolbelt.New(func() []byte { return make([]byte, 0, 256) })
)

func getChunk() []byte {
	return chunkPool.Get()[:readChunk]
}

func putChunk(b []byte) {
	if cap(b) < readChunk {
		return
	}
	chunkPool.Put(b[:readChunk])
}

func getStringBuf(n int) []byte {
	b := stringPool.Get()
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

func putStringBuf(b []byte) {
	if b == nil || cap(b) > maxPooledScratch {
		return
	}
	stringPool.Put(b[:0])
}
