package audio

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	wavHeaderSize = 44
	pcmFormatTag  = 1
	bitDepth      = 16
)

// Buffer holds decoded PCM audio as per-channel sample planes. All
// channels have the same length.
type Buffer struct {
	SampleRate int
	Channels   [][]int16
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// NumSamples returns the per-channel sample count.
func (b *Buffer) NumSamples() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DurationSeconds returns the playback length of the buffer.
func (b *Buffer) DurationSeconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.NumSamples()) / float64(b.SampleRate)
}

// DecodeWAV parses a 16-bit PCM RIFF/WAVE blob into a sample buffer.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < wavHeaderSize {
		return nil, errors.New("wav data too short")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE stream")
	}

	var (
		numChannels int
		sampleRate  int
		bits        int
		pcm         []byte
	)

	// Walk the chunk list. Only "fmt " and "data" matter, everything
	// else (LIST, fact, cue) is skipped.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, errors.New("malformed fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != pcmFormatTag {
				return nil, errors.Errorf("unsupported wav format tag %d", format)
			}
			numChannels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if numChannels == 0 || sampleRate == 0 {
		return nil, errors.New("missing fmt chunk")
	}
	if bits != bitDepth {
		return nil, errors.Errorf("unsupported bit depth %d", bits)
	}
	if pcm == nil {
		return nil, errors.New("missing data chunk")
	}

	frameSize := numChannels * bitDepth / 8
	numFrames := len(pcm) / frameSize

	channels := make([][]int16, numChannels)
	for ch := range channels {
		channels[ch] = make([]int16, numFrames)
	}

	for frame := 0; frame < numFrames; frame++ {
		base := frame * frameSize
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][frame] = int16(binary.LittleEndian.Uint16(pcm[base+ch*2 : base+ch*2+2]))
		}
	}

	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

// EncodeWAV serializes a sample buffer into a 16-bit PCM RIFF/WAVE
// blob with a 44-byte header.
func EncodeWAV(buf *Buffer) []byte {
	numChannels := buf.NumChannels()
	numSamples := buf.NumSamples()

	bytesPerSample := bitDepth / 8
	blockAlign := numChannels * bytesPerSample
	dataLength := numSamples * blockAlign

	out := make([]byte, wavHeaderSize+dataLength)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataLength))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], pcmFormatTag)
	binary.LittleEndian.PutUint16(out[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(buf.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(buf.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitDepth)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLength))

	pos := wavHeaderSize
	for frame := 0; frame < numSamples; frame++ {
		for ch := 0; ch < numChannels; ch++ {
			binary.LittleEndian.PutUint16(out[pos:pos+2], uint16(buf.Channels[ch][frame]))
			pos += 2
		}
	}

	return out
}
