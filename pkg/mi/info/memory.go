package info

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// ByteFlags describe the state of a byte of target memory.
type ByteFlags uint8

const (
	ByteReadable ByteFlags = 1 << iota
	ByteWritable
)

// MemoryByte is a byte of target memory. Bytes that could not be read
// have no flags set.
type MemoryByte struct {
	Value byte
	Flags ByteFlags
}

// Valid returns true if the byte was read from the target.
func (b MemoryByte) Valid() bool {
	return b.Flags&ByteReadable != 0
}

func validByte(v byte) MemoryByte {
	return MemoryByte{Value: v, Flags: ByteReadable | ByteWritable}
}

// invalidBlock returns n unreadable bytes.
func invalidBlock(n int) []MemoryByte {
	if n < 0 {
		n = 0
	}
	return make([]MemoryByte, n)
}

// offsetOf returns addr-base as an index into a block of size n.
func offsetOf(addr, base *big.Int, n int) (int, bool) {
	if addr == nil || base == nil {
		return 0, false
	}
	d := new(big.Int).Sub(addr, base)
	if d.Sign() < 0 || !d.IsInt64() || d.Int64() >= int64(n) {
		return 0, false
	}
	return int(d.Int64()), true
}

// DataReadMemoryInfo is the result of -data-read-memory.
type DataReadMemoryInfo struct {
	Info `yaml:"-"`

	// Address is the address of the first byte of Memory.
	Address  *big.Int
	NextRow  string
	PrevRow  string
	NextPage string
	PrevPage string
	// Memory holds count*wordSize bytes, bytes that GDB did not report
	// are invalid.
	Memory []MemoryByte
}

// NewDataReadMemoryInfo decodes
//
//	^done,addr="0x00001390",nr-bytes="6",total-bytes="6",next-row="0x00001396",
//	prev-row="0x0000138e",next-page="0x00001396",prev-page="0x0000138a",
//	memory=[{addr="0x00001390",data=["0x00","0x01","0x02","0x03","0x04","0x05"]}]
//
// for a read of count words of wordSize bytes. Words are stored big endian
// and placed at their offset from addr. Words that GDB could not read
// ("N/A") and malformed words are stored as invalid bytes.
func NewDataReadMemoryInfo(out *mi.Output, count, wordSize int) *DataReadMemoryInfo {
	if wordSize <= 0 {
		wordSize = 1
	}
	r := &DataReadMemoryInfo{Info: newInfo(out)}
	r.decode("data-read-memory", func(rr *mi.ResultRecord) {
		r.NextRow = r.str(rr, "next-row")
		r.PrevRow = r.str(rr, "prev-row")
		r.NextPage = r.str(rr, "next-page")
		r.PrevPage = r.str(rr, "prev-page")

		size := count * wordSize
		r.Memory = invalidBlock(size)
		base, ok := ParseAddress(r.str(rr, "addr"))
		if !ok {
			r.issuef("addr: malformed base address")
			return
		}
		r.Address = base

		rows, _ := r.tuples(rr, "memory")
		for _, row := range rows {
			rowAddr, ok := ParseAddress(r.str(row, "addr"))
			if !ok {
				r.issuef("memory: malformed row address")
				continue
			}
			for w, word := range r.strs(row, "data") {
				wordAddr := new(big.Int).Add(rowAddr, big.NewInt(int64(w*wordSize)))
				off, ok := offsetOf(wordAddr, base, size)
				if !ok {
					continue
				}
				r.putWord(off, word, wordSize)
			}
		}
	})
	return r
}

// putWord writes word at Memory[off:], most significant byte first.
func (r *DataReadMemoryInfo) putWord(off int, word string, wordSize int) {
	v, ok := parseWord(word)
	if !ok {
		return
	}
	b := v.Bytes()
	if len(b) > wordSize {
		r.issuef("memory: word %s does not fit in %d bytes", word, wordSize)
		return
	}
	// big.Int.Bytes drops leading zeroes
	pad := wordSize - len(b)
	for j := 0; j < wordSize && off+j < len(r.Memory); j++ {
		var c byte
		if j >= pad {
			c = b[j-pad]
		}
		r.Memory[off+j] = validByte(c)
	}
}

// MemoryBlock is a contiguous block of memory in the result of
// -data-read-memory-bytes.
type MemoryBlock struct {
	Begin    string
	Offset   string
	End      string
	Contents []byte
}

// DataReadMemoryBytesInfo is the result of -data-read-memory-bytes.
type DataReadMemoryBytesInfo struct {
	Info `yaml:"-"`

	// Address is the address of the first byte of Memory, the address that
	// was requested.
	Address *big.Int
	Blocks  []MemoryBlock
	// Memory holds count*wordSize bytes, the gaps between blocks are
	// invalid.
	Memory []MemoryByte
}

// NewDataReadMemoryBytesInfo decodes
//
//	^done,memory=[{begin="0xbffff154",offset="0x00000000",end="0xbffff15e",contents="01000000020000000300"}]
//
// for a read of count words of wordSize bytes. GDB omits the regions it
// could not read, each block is placed at its offset from the requested
// address.
func NewDataReadMemoryBytesInfo(out *mi.Output, count, wordSize int) *DataReadMemoryBytesInfo {
	if wordSize <= 0 {
		wordSize = 1
	}
	r := &DataReadMemoryBytesInfo{Info: newInfo(out)}
	r.decode("data-read-memory-bytes", func(rr *mi.ResultRecord) {
		size := count * wordSize
		r.Memory = invalidBlock(size)
		blocks, ok := r.tuples(rr, "memory")
		if !ok {
			return
		}
		r.Blocks = make([]MemoryBlock, 0, len(blocks))
		for _, t := range blocks {
			blk := MemoryBlock{
				Begin:  r.str(t, "begin"),
				Offset: r.str(t, "offset"),
				End:    r.str(t, "end"),
			}
			contents, err := hex.DecodeString(strings.TrimSpace(r.str(t, "contents")))
			if err != nil {
				r.issuef("contents: %v", err)
			}
			blk.Contents = contents
			r.Blocks = append(r.Blocks, blk)

			off, err := strconv.ParseUint(strings.TrimSpace(blk.Offset), 0, 64)
			if err != nil {
				r.issuef("offset: %v", err)
				continue
			}
			if r.Address == nil {
				if begin, ok := ParseAddress(blk.Begin); ok {
					r.Address = begin.Sub(begin, new(big.Int).SetUint64(off))
				}
			}
			for j, c := range contents {
				k := off + uint64(j)
				if k >= uint64(size) {
					break
				}
				r.Memory[k] = validByte(c)
			}
		}
	})
	return r
}
