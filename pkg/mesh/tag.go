package mesh

// Tag identifies a mesh to whoever minted it. Zero means untagged.
type Tag uint64

// TagAllocator hands out unique tags. There is no package-level
// allocator; whoever mints tagged meshes owns one and passes it down.
type TagAllocator struct {
	next Tag
}

// NewTagAllocator returns an allocator whose first tag is 1.
func NewTagAllocator() *TagAllocator {
	return &TagAllocator{next: 1}
}

// Next returns the next unused tag.
func (a *TagAllocator) Next() Tag {
	t := a.next
	a.next++
	return t
}
