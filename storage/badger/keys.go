package badger

// Key prefixes for different data types
const (
	collectionPrefix = "col"
	chunkPrefix      = "chk"
)

// makeCollectionKey generates the key holding a collection header.
// Format: col:name
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + ":" + name)
}

// makeCollectionScanPrefix matches every collection header.
func makeCollectionScanPrefix() []byte {
	return []byte(collectionPrefix + ":")
}

// makeChunkKey generates the key for a chunk within a collection.
// Format: chk:collection:id
func makeChunkKey(collection, id string) []byte {
	prefix := makeChunkPrefix(collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// makeChunkPrefix generates the prefix shared by all chunks of a collection.
// Collection names cannot contain ':' so prefixes never overlap.
func makeChunkPrefix(collection string) []byte {
	return []byte(chunkPrefix + ":" + collection + ":")
}
