package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ThumbnailGenerator extracts a still frame from a staged upload so new
// records get a real thumbnail. When ffmpeg is unavailable the publisher
// falls back to the stock thumbnail URL.
type ThumbnailGenerator struct {
	ffmpegPath string
	outputDir  string
	logger     zerolog.Logger
}

func NewThumbnailGenerator(outputDir string, logger zerolog.Logger) *ThumbnailGenerator {
	ffmpegPath := "ffmpeg"
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		ffmpegPath = path
	}

	os.MkdirAll(outputDir, 0755)

	return &ThumbnailGenerator{
		ffmpegPath: ffmpegPath,
		outputDir:  outputDir,
		logger:     logger,
	}
}

func (t *ThumbnailGenerator) IsAvailable() bool {
	_, err := exec.LookPath(t.ffmpegPath)
	return err == nil
}

// Path returns where the thumbnail for a given key lives, whether or not
// it has been generated yet.
func (t *ThumbnailGenerator) Path(key string) string {
	return filepath.Join(t.outputDir, key+".jpg")
}

// Generate extracts one frame a few seconds in and writes {key}.jpg under
// the output dir, returning the path. Existing thumbnails are reused.
func (t *ThumbnailGenerator) Generate(videoPath, key string, duration int64) (string, error) {
	outputPath := t.Path(key)

	if _, err := os.Stat(outputPath); err == nil {
		return outputPath, nil
	}

	// 10% into the video, capped at 5 seconds
	timestamp := int64(5)
	if duration > 0 {
		if tenth := duration / 10; tenth > 0 && tenth < timestamp {
			timestamp = tenth
		}
		if timestamp > duration {
			timestamp = duration / 2
		}
	}

	args := []string{
		"-ss", fmt.Sprintf("%d", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", "scale=320:-1",
		"-q:v", "2",
		"-y",
		outputPath,
	}

	cmd := exec.Command(t.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.logger.Debug().
			Err(err).
			Str("video", videoPath).
			Str("output", string(output)).
			Msg("ffmpeg thumbnail generation failed")
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	return outputPath, nil
}
