package sticker

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ArtifactInfo is the animation metadata read back from an encoded WebP
// container.
type ArtifactInfo struct {
	CanvasWidth  int
	CanvasHeight int
	FrameCount   int
	LoopCount    int
	DurationsMS  []int
}

// Inspect walks the RIFF chunks of a WebP file and reports canvas size,
// frame count, per-frame durations and loop count. Still images report a
// single frame with no duration. Only the container level is parsed; frame
// payloads are not decoded.
func Inspect(path string) (ArtifactInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ArtifactInfo{}, fmt.Errorf("failed to read artifact: %w", err)
	}
	return InspectBytes(data)
}

// InspectBytes parses an in-memory WebP container. See Inspect.
func InspectBytes(data []byte) (ArtifactInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return ArtifactInfo{}, fmt.Errorf("not a WebP container")
	}

	info := ArtifactInfo{}
	animated := false
	off := 12

	for off+8 <= len(data) {
		fourCC := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		payload := off + 8
		if payload+size > len(data) {
			return ArtifactInfo{}, fmt.Errorf("truncated %s chunk", fourCC)
		}

		switch fourCC {
		case "VP8X":
			if size < 10 {
				return ArtifactInfo{}, fmt.Errorf("short VP8X chunk")
			}
			info.CanvasWidth = int(readUint24(data[payload+4:])) + 1
			info.CanvasHeight = int(readUint24(data[payload+7:])) + 1
		case "ANIM":
			if size < 6 {
				return ArtifactInfo{}, fmt.Errorf("short ANIM chunk")
			}
			animated = true
			info.LoopCount = int(binary.LittleEndian.Uint16(data[payload+4 : payload+6]))
		case "ANMF":
			if size < 16 {
				return ArtifactInfo{}, fmt.Errorf("short ANMF chunk")
			}
			info.FrameCount++
			info.DurationsMS = append(info.DurationsMS, int(readUint24(data[payload+12:])))
		case "VP8 ", "VP8L":
			if !animated {
				info.FrameCount = 1
			}
		}

		// Chunks are padded to even sizes.
		off = payload + size + size%2
	}

	if info.FrameCount == 0 {
		return ArtifactInfo{}, fmt.Errorf("no image data in container")
	}
	return info, nil
}

func readUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
