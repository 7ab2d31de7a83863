package audio

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := make([]int16, SampleRate/2) // half a second
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	got, err := decodeWAV(EncodeWAV(samples))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	for i := range got {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDecodeWAVDownmixesStereo(t *testing.T) {
	// two channels carrying 100 and 300 should average to 200
	frames := SampleRate / 4
	raw := buildWAV(t, 2, SampleRate, func(frame, channel int) int16 {
		if channel == 0 {
			return 100
		}
		return 300
	}, frames)

	got, err := decodeWAV(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != frames {
		t.Fatalf("got %d samples, want %d", len(got), frames)
	}
	if got[frames/2] != 200 {
		t.Fatalf("downmixed sample = %d, want 200", got[frames/2])
	}
}

func TestDecodeWAVResamples(t *testing.T) {
	frames := 8000 // one second at 8 kHz
	raw := buildWAV(t, 1, 8000, func(frame, channel int) int16 { return 42 }, frames)

	got, err := decodeWAV(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != SampleRate {
		t.Fatalf("resampled to %d samples, want %d", len(got), SampleRate)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := decodeWAV([]byte("not audio at all")); !errors.Is(err, errNotRIFF) {
		t.Fatalf("err = %v, want errNotRIFF", err)
	}
}

func TestDecodeWAVRejectsCompressedEncoding(t *testing.T) {
	raw := buildWAV(t, 1, SampleRate, func(frame, channel int) int16 { return 0 }, SampleRate)
	// flip the audio format tag to mu-law
	binary.LittleEndian.PutUint16(raw[20:22], 7)

	if _, err := decodeWAV(raw); !errors.Is(err, errEncoding) {
		t.Fatalf("err = %v, want errEncoding", err)
	}
}

func TestDecodeWAVToleratesTruncatedDataHeader(t *testing.T) {
	raw := buildWAV(t, 1, SampleRate, func(frame, channel int) int16 { return 7 }, SampleRate)
	// claim a data chunk far larger than the actual payload, as
	// streamed recorders that never patch the header do
	binary.LittleEndian.PutUint32(raw[40:44], 1<<30)

	got, err := decodeWAV(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != SampleRate {
		t.Fatalf("got %d samples, want %d", len(got), SampleRate)
	}
}

// buildWAV assembles a PCM16 container with the given channel layout.
func buildWAV(t *testing.T, channels, rate int, sample func(frame, channel int) int16, frames int) []byte {
	t.Helper()

	dataLen := frames * channels * 2
	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			p := 44 + (f*channels+c)*2
			binary.LittleEndian.PutUint16(buf[p:p+2], uint16(sample(f, c)))
		}
	}
	return buf
}
