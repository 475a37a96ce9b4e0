package sticker

import (
	"encoding/binary"
	"testing"
)

// buildWebP assembles a minimal RIFF container out of the given chunks.
func buildWebP(chunks ...[]byte) []byte {
	body := []byte("WEBP")
	for _, c := range chunks {
		body = append(body, c...)
	}
	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

func chunk(fourCC string, payload []byte) []byte {
	c := []byte(fourCC)
	c = binary.LittleEndian.AppendUint32(c, uint32(len(payload)))
	c = append(c, payload...)
	if len(payload)%2 == 1 {
		c = append(c, 0)
	}
	return c
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func vp8xChunk(width, height int) []byte {
	p := make([]byte, 10)
	p[0] = 0x12 // animation + alpha flags
	putUint24(p[4:], uint32(width-1))
	putUint24(p[7:], uint32(height-1))
	return chunk("VP8X", p)
}

func animChunk(loopCount int) []byte {
	p := make([]byte, 6)
	binary.LittleEndian.PutUint16(p[4:], uint16(loopCount))
	return chunk("ANIM", p)
}

func anmfChunk(durationMS int) []byte {
	p := make([]byte, 16)
	putUint24(p[12:], uint32(durationMS))
	return chunk("ANMF", p)
}

func TestInspectAnimatedContainer(t *testing.T) {
	data := buildWebP(
		vp8xChunk(512, 512),
		animChunk(0),
		anmfChunk(250),
		anmfChunk(250),
		anmfChunk(250),
	)

	info, err := InspectBytes(data)
	if err != nil {
		t.Fatalf("InspectBytes error: %v", err)
	}
	if info.CanvasWidth != 512 || info.CanvasHeight != 512 {
		t.Fatalf("canvas = %dx%d; want 512x512", info.CanvasWidth, info.CanvasHeight)
	}
	if info.FrameCount != 3 {
		t.Fatalf("frame count = %d; want 3", info.FrameCount)
	}
	if info.LoopCount != 0 {
		t.Fatalf("loop count = %d; want 0", info.LoopCount)
	}
	for i, d := range info.DurationsMS {
		if d != 250 {
			t.Fatalf("frame %d duration = %d; want 250", i, d)
		}
	}
}

func TestInspectStillContainer(t *testing.T) {
	data := buildWebP(chunk("VP8L", make([]byte, 8)))

	info, err := InspectBytes(data)
	if err != nil {
		t.Fatalf("InspectBytes error: %v", err)
	}
	if info.FrameCount != 1 {
		t.Fatalf("frame count = %d; want 1 for a still", info.FrameCount)
	}
	if len(info.DurationsMS) != 0 {
		t.Fatal("still image should carry no durations")
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":             nil,
		"not riff":          []byte("GIF89a trailing bytes here"),
		"riff but not webp": append(binary.LittleEndian.AppendUint32([]byte("RIFF"), 4), []byte("WAVE")...),
		"no image data":     buildWebP(animChunk(0)),
	}
	for name, data := range cases {
		if _, err := InspectBytes(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestInspectRejectsTruncatedChunk(t *testing.T) {
	data := buildWebP(anmfChunk(100))
	// Claim a larger payload than is present.
	binary.LittleEndian.PutUint32(data[16:], 1024)
	if _, err := InspectBytes(data); err == nil {
		t.Fatal("expected truncation error")
	}
}
