package http2

import "sort"

// Streams is a connection's stream map, kept as an id-sorted slice (streams
// are created in increasing id order, so appends dominate over insertions).
type Streams struct {
	list []*Stream
}

func (ss *Streams) Insert(s *Stream) {
	i := sort.Search(len(ss.list), func(i int) bool {
		return ss.list[i].id >= s.id
	})

	if i == len(ss.list) {
		ss.list = append(ss.list, s)
		return
	}

	ss.list = append(ss.list, nil)
	copy(ss.list[i+1:], ss.list[i:])
	ss.list[i] = s
}

func (ss *Streams) Del(id uint32) *Stream {
	i := sort.Search(len(ss.list), func(i int) bool {
		return ss.list[i].id >= id
	})

	if i < len(ss.list) && ss.list[i].id == id {
		s := ss.list[i]
		ss.list = append(ss.list[:i], ss.list[i+1:]...)
		return s
	}

	return nil
}

func (ss *Streams) Get(id uint32) *Stream {
	i := sort.Search(len(ss.list), func(i int) bool {
		return ss.list[i].id >= id
	})
	if i < len(ss.list) && ss.list[i].id == id {
		return ss.list[i]
	}

	return nil
}

func (ss *Streams) Len() int { return len(ss.list) }

// Each calls fn for every stream, in increasing id order. fn may return
// false to stop iteration early.
func (ss *Streams) Each(fn func(*Stream) bool) {
	for _, s := range ss.list {
		if !fn(s) {
			return
		}
	}
}
