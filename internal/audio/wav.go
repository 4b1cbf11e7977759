// Package audio converts between PCM and WAV and splits microphone frames
// into spoken phrases.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// WAVContentType is the MIME type of EncodeWAV output.
const WAVContentType = "audio/wav"

// scratch backs the encoder's io.WriteSeeker without touching disk.
var scratch = afero.NewMemMapFs()

// EncodeWAV wraps 16-bit integer samples in a WAV container.
func EncodeWAV(samples []int, sampleRate, channels int) ([]byte, error) {
	f, err := afero.TempFile(scratch, "", "hark-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating scratch file: %w", err)
	}
	name := f.Name()
	defer scratch.Remove(name)

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("finalizing wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing scratch file: %w", err)
	}

	return afero.ReadFile(scratch, name)
}

// EncodeFloatWAV encodes mono float32 samples in [-1, 1] as 16-bit WAV.
func EncodeFloatWAV(samples []float32, sampleRate int) ([]byte, error) {
	return EncodeWAV(FloatToInt16(samples), sampleRate, 1)
}

// PCM16ToWAV wraps little-endian signed 16-bit PCM bytes in a WAV container.
func PCM16ToWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	return EncodeWAV(samples, sampleRate, channels)
}

// DecodeWAV returns mono float32 samples and the sample rate of a WAV file.
// Multi-channel input is downmixed by averaging.
func DecodeWAV(data []byte) ([]float32, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding wav: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	scale := math.Pow(2, float64(buf.SourceBitDepth-1))
	if buf.SourceBitDepth == 0 {
		scale = math.Pow(2, 15)
	}

	out := make([]float32, len(buf.Data)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = float32(sum / float64(channels) / scale)
	}
	return out, buf.Format.SampleRate, nil
}

// FloatToInt16 converts float32 samples in [-1, 1] to clipped 16-bit values.
func FloatToInt16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * math.MaxInt16)
		out[i] = int(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	return out
}
