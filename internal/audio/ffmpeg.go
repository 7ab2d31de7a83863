package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
)

// FFmpegDecoder shells out to ffmpeg to normalize arbitrary input
// (webm, compressed wav) to mono 16 kHz PCM. Temp files are removed
// before returning, including on failure.
type FFmpegDecoder struct {
	// Binary overrides the ffmpeg executable path. Empty means "ffmpeg"
	// resolved from PATH.
	Binary string
}

func (d *FFmpegDecoder) Decode(ctx context.Context, raw []byte, format models.Format) ([]int16, error) {
	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	in, err := os.CreateTemp("", "transcribe-in-*."+string(format))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: temp input: %w", err)
	}
	defer os.Remove(in.Name())

	if _, err := in.Write(raw); err != nil {
		in.Close()
		return nil, fmt.Errorf("ffmpeg: write input: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("ffmpeg: close input: %w", err)
	}

	out, err := os.CreateTemp("", "transcribe-out-*.wav")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: temp output: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, bin,
		"-y", "-i", in.Name(),
		"-ac", "1", "-ar", fmt.Sprintf("%d", SampleRate),
		"-f", "wav",
		out.Name(),
	)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, tail(msg, 256))
	}

	wav, err := os.ReadFile(out.Name())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: read output: %w", err)
	}
	return decodeWAV(wav)
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
