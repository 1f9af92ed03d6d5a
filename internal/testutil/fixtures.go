// Package testutil builds in-memory container fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"sort"

	xbmp "golang.org/x/image/bmp"
)

// TIFFOptions tweaks the generated container.
type TIFFOptions struct {
	RowsPerStrip  int
	BitsPerSample uint16
	Compression   uint16
	// OmitRowsPerStrip leaves the rows-per-strip tag out.
	OmitRowsPerStrip bool
}

// TIFF16 encodes a little-endian, uncompressed, chunky RGB container with
// 16-bit samples. px returns the red, green and blue values of (x, y), with
// y counted from the top. The result also decodes with golang.org/x/image/tiff.
func TIFF16(w, h int, opt TIFFOptions, px func(x, y int) [3]uint16) []byte {
	if opt.RowsPerStrip <= 0 {
		opt.RowsPerStrip = h
	}
	if opt.BitsPerSample == 0 {
		opt.BitsPerSample = 16
	}
	if opt.Compression == 0 {
		opt.Compression = 1
	}
	le := binary.LittleEndian
	strips := (h + opt.RowsPerStrip - 1) / opt.RowsPerStrip
	rowBytes := w * 6

	var pix bytes.Buffer
	var offsets, counts []uint32
	const dataStart = 8
	for s := 0; s < strips; s++ {
		offsets = append(offsets, uint32(dataStart+pix.Len()))
		rows := min(opt.RowsPerStrip, h-s*opt.RowsPerStrip)
		counts = append(counts, uint32(rows*rowBytes))
		for y := s * opt.RowsPerStrip; y < s*opt.RowsPerStrip+rows; y++ {
			for x := 0; x < w; x++ {
				v := px(x, y)
				_ = binary.Write(&pix, le, v)
			}
		}
	}

	type entry struct {
		tag, typ uint16
		vals     []uint32
	}
	entries := []entry{
		{0x100, 4, []uint32{uint32(w)}},
		{0x101, 4, []uint32{uint32(h)}},
		{0x102, 3, []uint32{uint32(opt.BitsPerSample), uint32(opt.BitsPerSample), uint32(opt.BitsPerSample)}},
		{0x103, 3, []uint32{uint32(opt.Compression)}},
		{0x106, 3, []uint32{2}},
		{0x111, 4, offsets},
		{0x115, 3, []uint32{3}},
		{0x117, 4, counts},
		{0x11C, 3, []uint32{1}},
	}
	if !opt.OmitRowsPerStrip {
		entries = append(entries, entry{0x116, 4, []uint32{uint32(opt.RowsPerStrip)}})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	dir := dataStart + pix.Len()
	if dir%2 == 1 {
		dir++
	}
	extra := dir + 2 + len(entries)*12 + 4
	var out, tail bytes.Buffer
	out.Write([]byte{'I', 'I', 42, 0})
	_ = binary.Write(&out, le, uint32(dir))
	out.Write(pix.Bytes())
	for out.Len() < dir {
		out.WriteByte(0)
	}
	_ = binary.Write(&out, le, uint16(len(entries)))
	for _, e := range entries {
		size := 4
		if e.typ == 3 {
			size = 2
		}
		var raw bytes.Buffer
		for _, v := range e.vals {
			if size == 2 {
				_ = binary.Write(&raw, le, uint16(v))
			} else {
				_ = binary.Write(&raw, le, v)
			}
		}
		_ = binary.Write(&out, le, e.tag)
		_ = binary.Write(&out, le, e.typ)
		_ = binary.Write(&out, le, uint32(len(e.vals)))
		if raw.Len() <= 4 {
			var inline [4]byte
			copy(inline[:], raw.Bytes())
			out.Write(inline[:])
		} else {
			_ = binary.Write(&out, le, uint32(extra+tail.Len()))
			tail.Write(raw.Bytes())
		}
	}
	_ = binary.Write(&out, le, uint32(0))
	out.Write(tail.Bytes())
	return out.Bytes()
}

// BMP encodes an opaque picture built from px, with y counted from the top,
// using golang.org/x/image/bmp.
func BMP(w, h int, px func(x, y int) color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := px(x, y)
			c.A = 255
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := xbmp.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
