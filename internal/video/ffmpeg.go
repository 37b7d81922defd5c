package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// FFmpegRenderer implements Renderer by shelling out to ffmpeg. Artifacts
// land in workDir; callers clean up the final video, intermediates are
// removed by the OS temp reaper.
type FFmpegRenderer struct {
	workDir string
}

// NewFFmpegRenderer creates a renderer writing under workDir.
func NewFFmpegRenderer(workDir string) (*FFmpegRenderer, error) {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &FFmpegRenderer{workDir: workDir}, nil
}

func (r *FFmpegRenderer) path(ext string) string {
	return filepath.Join(r.workDir, uuid.New().String()+ext)
}

func (r *FFmpegRenderer) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", append([]string{"-y", "-loglevel", "error"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, string(out))
	}
	return nil
}

func (r *FFmpegRenderer) RenderFrame(ctx context.Context, page Page) (string, error) {
	framePath := r.path(".png")

	title := strings.ReplaceAll(page.Title, "'", "\\'")
	err := r.run(ctx,
		"-f", "lavfi",
		"-i", "color=c=0x1E1E2E:s=1280x720",
		"-vf", fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=48:x=(w-text_w)/2:y=(h-text_h)/2", title),
		"-frames:v", "1",
		framePath,
	)
	if err != nil {
		return "", err
	}
	return framePath, nil
}

func (r *FFmpegRenderer) ComposePage(ctx context.Context, framePath, audioPath string) (string, error) {
	clipPath := r.path(".mp4")

	err := r.run(ctx,
		"-loop", "1",
		"-i", framePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		"-shortest",
		clipPath,
	)
	if err != nil {
		return "", err
	}
	return clipPath, nil
}

func (r *FFmpegRenderer) Combine(ctx context.Context, clipPaths []string) (string, error) {
	listPath := r.path(".txt")
	var sb strings.Builder
	for _, clip := range clipPaths {
		fmt.Fprintf(&sb, "file '%s'\n", clip)
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	videoPath := r.path(".mp4")
	err := r.run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		videoPath,
	)
	if err != nil {
		return "", err
	}
	return videoPath, nil
}

// OpenAISpeech implements Speech with the OpenAI text-to-speech endpoint.
type OpenAISpeech struct {
	client  *openai.Client
	workDir string
}

// NewOpenAISpeech creates a TTS client.
func NewOpenAISpeech(apiKey, workDir string) *OpenAISpeech {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &OpenAISpeech{client: openai.NewClient(apiKey), workDir: workDir}
}

func (s *OpenAISpeech) Synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceNova,
	})
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Close()

	audioPath := filepath.Join(s.workDir, uuid.New().String()+".mp3")
	out, err := os.Create(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(resp); err != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	return audioPath, nil
}
