package driven

import "context"

// ObjectStore is the lake's byte-level storage. Keys are slash-
// separated paths. Implementations must give read-after-write
// visibility for committed objects.
type ObjectStore interface {
	// Get returns an object's content, or domain.ErrNotFound (wrapped)
	// when no object exists at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object at key, replacing any existing content.
	// Put alone is not atomic with respect to readers; objects a
	// consumer may observe mid-write go through Put-to-staging plus
	// CommitWrite instead.
	Put(ctx context.Context, key string, data []byte) error

	// CommitWrite atomically makes the object staged at stagingKey
	// visible at finalKey and removes the staged copy. A reader
	// observes either finalKey's previous content or its new content,
	// never a mixture and never an absent object where one existed.
	CommitWrite(ctx context.Context, stagingKey, finalKey string) error

	// Delete removes an object. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys under prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)
}
