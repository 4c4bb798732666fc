package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Raw narration uploads without a RIFF header are 16-bit little-endian mono
// at this rate.
const RawPCMSampleRate = 24000

// WrapRawPCM writes the headerless s16le mono samples in src to dst as a WAV file.
func WrapRawPCM(src, dst string, sampleRate int) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if len(raw) < 2 {
		return errors.New("raw audio is empty")
	}

	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(out, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		out.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return out.Close()
}
