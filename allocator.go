package main

import (
	"encoding/binary"
	"net/netip"

	"github.com/pkg/errors"
)

const (
	// DefaultPoolNetwork is the seed network for a cloud node that declares
	// no pool of its own.
	DefaultPoolNetwork = "10.100.0.0/16"

	// DefaultPoolPrefixIncrement widens the seed prefix to the block size
	// handed out per allocation (/16 + 8 = /24 blocks).
	DefaultPoolPrefixIncrement = 8
)

// SubnetAllocator hands out consecutive, disjoint IPv4 blocks carved out of
// a seed network. The cursor only moves forward; replaying the sequence
// requires constructing a fresh allocator.
type SubnetAllocator struct {
	blockBits int
	cursor    uint32
	exhausted bool
}

// NewSubnetAllocator creates an allocator over the seed network. Each block
// has prefix length seed-prefix + increment.
func NewSubnetAllocator(seed string, increment int) (*SubnetAllocator, error) {
	prefix, err := netip.ParsePrefix(seed)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid seed network %q", seed)
	}
	if !prefix.Addr().Is4() {
		return nil, errors.Errorf("seed network %q is not IPv4", seed)
	}
	if increment < 0 || prefix.Bits()+increment > 32 {
		return nil, errors.Errorf("prefix increment %d does not fit in %s", increment, seed)
	}

	base := prefix.Masked().Addr().As4()
	return &SubnetAllocator{
		blockBits: prefix.Bits() + increment,
		cursor:    binary.BigEndian.Uint32(base[:]),
	}, nil
}

// Next yields the next unused block. Blocks are pairwise disjoint and
// strictly increasing; running past the end of the IPv4 address space is a
// fatal, unrecoverable condition.
func (a *SubnetAllocator) Next() (netip.Prefix, error) {
	if a.exhausted {
		return netip.Prefix{}, errors.New("subnet allocator exhausted")
	}

	var addr [4]byte
	binary.BigEndian.PutUint32(addr[:], a.cursor)
	block := netip.PrefixFrom(netip.AddrFrom4(addr), a.blockBits)

	width := uint64(1) << (32 - a.blockBits)
	next := uint64(a.cursor) + width
	if next > 0xFFFFFFFF {
		a.exhausted = true
	} else {
		a.cursor = uint32(next)
	}
	return block, nil
}

// hostRange returns the first and last assignable host addresses of a block.
func hostRange(block netip.Prefix) (netip.Addr, netip.Addr) {
	base := block.Masked().Addr().As4()
	start := binary.BigEndian.Uint32(base[:])
	width := uint32(1) << (32 - block.Bits())

	var first, last [4]byte
	binary.BigEndian.PutUint32(first[:], start+1)
	binary.BigEndian.PutUint32(last[:], start+width-2)
	return netip.AddrFrom4(first), netip.AddrFrom4(last)
}
