package audio

import (
	"fmt"
	"io"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chunkSeconds is the maximum length of a single transcription request.
// Longer takes are split and transcribed in parallel.
const chunkSeconds = 10 * 60

// Recording is one captured take. It owns its sample buffer and is handed
// off by pointer, never duplicated.
type Recording struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the take.
func (rec *Recording) Duration() time.Duration {
	if rec.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(rec.Samples)) * time.Second / time.Duration(rec.SampleRate)
}

// Chunks splits the take into transcription-sized pieces. Short takes return
// a single chunk sharing the original buffer.
func (rec *Recording) Chunks() []*Recording {
	max := rec.SampleRate * chunkSeconds
	if max <= 0 || len(rec.Samples) <= max {
		return []*Recording{rec}
	}

	var chunks []*Recording
	for start := 0; start < len(rec.Samples); start += max {
		end := start + max
		if end > len(rec.Samples) {
			end = len(rec.Samples)
		}
		chunks = append(chunks, &Recording{Samples: rec.Samples[start:end], SampleRate: rec.SampleRate})
	}
	return chunks
}

// EncodeWAV renders the take as a 16-bit mono PCM WAV file in memory.
func (rec *Recording) EncodeWAV() ([]byte, error) {
	var buf seekBuffer
	enc := wav.NewEncoder(&buf, rec.SampleRate, 16, Channels, 1)

	data := make([]int, len(rec.Samples))
	for i, s := range rec.Samples {
		// Clamp before widening; capture can overshoot [-1, 1] slightly.
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	intBuf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: Channels, SampleRate: rec.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("failed to encode audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize audio encoding: %w", err)
	}

	return buf.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker. The WAV encoder seeks back to
// patch the header once the sample count is known.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		if need > cap(b.data) {
			grown := make([]byte, need, need*2)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:need]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid seek whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.data
}

var _ io.WriteSeeker = (*seekBuffer)(nil)
