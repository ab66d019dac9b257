package mediadb

import "strings"

// maxChildren bounds the count decoded from a CHILDREN string.
const maxChildren = 20000

// MaxChildID is the first id a CHILDREN string cannot hold.
const MaxChildID = 0x80000000

// VectorToChildren packs a list of ids into a string: the count followed by
// each id, every number written as one UTF-8 style sequence. Sequences up to
// six bytes are used so that ids with a database number in their top bits
// still fit. Ids from MaxChildID up have no sequence and are left out. A
// zero id cannot be stored: it is written as '?' and reads back as 63. An
// empty list is the empty string.
func VectorToChildren(ids []uint32) string {
	n := 0
	for _, id := range ids {
		if id < MaxChildID {
			n++
		}
	}
	if n == 0 {
		return ""
	}

	sb := &strings.Builder{}
	sb.Grow(3 * (n + 1))
	appendCode(sb, uint32(n))
	for _, id := range ids {
		if id < MaxChildID {
			appendCode(sb, id)
		}
	}
	return sb.String()
}

// ChildrenToVector reverses VectorToChildren. Malformed or implausible input
// decodes to an empty list.
func ChildrenToVector(s string) []uint32 {
	if s == "" {
		return nil
	}

	n, rest := readCode(s)
	if n == 0 || n > maxChildren {
		return nil
	}

	ids := make([]uint32, n)
	for i := range ids {
		ids[i], rest = readCode(rest)
	}
	return ids
}

func appendCode(sb *strings.Builder, c uint32) {
	switch {
	case c == 0:
		sb.WriteByte('?')
	case c < 0x80:
		sb.WriteByte(byte(c))
	case c < 0x800:
		sb.WriteByte(byte(0xC0 | c>>6))
		sb.WriteByte(byte(0x80 | c&0x3F))
	case c < 0x10000:
		sb.WriteByte(byte(0xE0 | c>>12))
		sb.WriteByte(byte(0x80 | (c>>6)&0x3F))
		sb.WriteByte(byte(0x80 | c&0x3F))
	case c < 0x200000:
		sb.WriteByte(byte(0xF0 | c>>18))
		sb.WriteByte(byte(0x80 | (c>>12)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>6)&0x3F))
		sb.WriteByte(byte(0x80 | c&0x3F))
	case c < 0x4000000:
		sb.WriteByte(byte(0xF8 | c>>24))
		sb.WriteByte(byte(0x80 | (c>>18)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>12)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>6)&0x3F))
		sb.WriteByte(byte(0x80 | c&0x3F))
	case c < 0x80000000:
		sb.WriteByte(byte(0xFC | c>>30))
		sb.WriteByte(byte(0x80 | (c>>24)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>18)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>12)&0x3F))
		sb.WriteByte(byte(0x80 | (c>>6)&0x3F))
		sb.WriteByte(byte(0x80 | c&0x3F))
	}
}

// readCode decodes one sequence from the front of s. A stray continuation
// byte decodes as 0 and truncated input reads as zero bits.
func readCode(s string) (uint32, string) {
	if s == "" {
		return 0, s
	}

	lead := s[0]
	var c uint32
	var extra int
	switch {
	case lead < 0x80:
		return uint32(lead), s[1:]
	case lead < 0xC0:
		return 0, s[1:]
	case lead < 0xE0:
		c, extra = uint32(lead&0x1F), 1
	case lead < 0xF0:
		c, extra = uint32(lead&0x0F), 2
	case lead < 0xF8:
		c, extra = uint32(lead&0x07), 3
	case lead < 0xFC:
		c, extra = uint32(lead&0x03), 4
	case lead < 0xFE:
		c, extra = uint32(lead&0x01), 5
	default:
		return 0, s[1:]
	}

	s = s[1:]
	for i := 0; i < extra; i++ {
		var b byte
		if len(s) > 0 {
			b, s = s[0], s[1:]
		}
		c = c<<6 | uint32(b&0x3F)
	}
	return c, s
}
