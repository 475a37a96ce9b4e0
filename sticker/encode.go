package sticker

import (
	"fmt"
	"log"
	"os"
)

// EncodedArtifact describes a finished sticker file on disk.
type EncodedArtifact struct {
	Path       string
	ByteSize   int64
	OverBudget bool
}

// Codec serializes a LoopSpec into an animated container file at a given
// quality level.
type Codec interface {
	Encode(loop LoopSpec, path string, quality int) error
	Extension() string
	ContentType() string
}

// EncodeSticker writes the loop to outputPath and enforces the byte budget
// against the real encoded size: if the first pass exceeds budgetBytes, it
// performs exactly one corrective re-encode at the retry quality and accepts
// the result. An artifact still over budget after the corrective pass is
// returned together with a *BudgetExceededError so the caller can decide
// whether to accept it. Fatal encode failures leave nothing at outputPath.
func EncodeSticker(codec Codec, loop LoopSpec, outputPath string, quality, retryQuality int, budgetBytes int64) (EncodedArtifact, error) {
	if len(loop.Frames) == 0 {
		return EncodedArtifact{}, &ConfigurationError{Param: "frames", Detail: "loop is empty"}
	}

	partial := outputPath + ".partial" + codec.Extension()

	size, err := encodeAndMeasure(codec, loop, partial, quality)
	if err != nil {
		return EncodedArtifact{}, err
	}

	if size > budgetBytes {
		log.Printf("⚠️  Encoded %d bytes exceeds %d byte budget, re-encoding at quality %d", size, budgetBytes, retryQuality)
		size, err = encodeAndMeasure(codec, loop, partial, retryQuality)
		if err != nil {
			return EncodedArtifact{}, err
		}
	}

	if err := os.Rename(partial, outputPath); err != nil {
		_ = os.Remove(partial)
		return EncodedArtifact{}, fmt.Errorf("failed to finalize artifact: %w", err)
	}

	artifact := EncodedArtifact{Path: outputPath, ByteSize: size}
	if size > budgetBytes {
		artifact.OverBudget = true
		return artifact, &BudgetExceededError{Size: size, Budget: budgetBytes}
	}

	log.Printf("✅ Saved: %s (%.1f KB)", outputPath, float64(size)/1024)
	return artifact, nil
}

func encodeAndMeasure(codec Codec, loop LoopSpec, path string, quality int) (int64, error) {
	if err := codec.Encode(loop, path, quality); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("encode failed: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat artifact: %w", err)
	}
	return info.Size(), nil
}
