package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	errNotRIFF  = errors.New("not a RIFF/WAVE container")
	errNoData   = errors.New("wav: missing data chunk")
	errEncoding = errors.New("wav: unsupported encoding")
)

// decodeWAV parses a PCM WAVE container and returns mono samples at
// SampleRate. Multi-channel input is downmixed by averaging and other
// rates are linearly resampled. Compressed encodings are rejected so
// the caller can fall back to the ffmpeg collaborator.
func decodeWAV(raw []byte) ([]int16, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, errNotRIFF
	}

	var (
		channels   int
		sampleRate int
		bitsPerSmp int
		haveFmt    bool
		data       []byte
	)

	// walk the chunk list; chunks are word-aligned
	off := 12
	for off+8 <= len(raw) {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(raw) {
			// tolerate a truncated final data chunk, common with
			// streamed recordings that never fixed up the header
			if id == "data" && body < len(raw) {
				size = len(raw) - body
			} else {
				break
			}
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short (%d bytes)", size)
			}
			audioFormat := int(binary.LittleEndian.Uint16(raw[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bitsPerSmp = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			const formatExtensible = 0xFFFE
			if audioFormat != 1 && audioFormat != formatExtensible {
				return nil, errEncoding
			}
			if bitsPerSmp != 16 {
				return nil, errEncoding
			}
			haveFmt = true
		case "data":
			data = raw[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return nil, errNotRIFF
	}
	if data == nil {
		return nil, errNoData
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid fmt (channels=%d rate=%d)", channels, sampleRate)
	}

	frames := len(data) / (2 * channels)
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < channels; c++ {
			p := (i*channels + c) * 2
			sum += int(int16(binary.LittleEndian.Uint16(data[p : p+2])))
		}
		mono[i] = int16(sum / channels)
	}

	return resample(mono, sampleRate, SampleRate), nil
}

// resample converts src from one rate to another by linear
// interpolation. Adequate for speech headed to an STT service.
func resample(src []int16, from, to int) []int16 {
	if from == to || len(src) == 0 {
		return src
	}
	outLen := int(int64(len(src)) * int64(to) / int64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(src[j])*(1-frac) + float64(src[j+1])*frac)
	}
	return out
}

// EncodeWAV wraps mono samples at SampleRate in a minimal PCM WAVE
// container, the canonical wire format for transcription requests.
func EncodeWAV(samples []int16) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], SampleRate*2) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)            // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)           // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}
	return buf
}
