// Package video turns a PDF's page explanations into a narrated lesson
// video. Rendering and speech synthesis are behind interfaces; this package
// owns orchestration, charging and notification, not codec flags.
package video

import "context"

// Page is one unit of the lesson: the page content plus the explanation
// script to narrate over it.
type Page struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Explanation string `json:"explanation"`
}

// Renderer produces the visual artifacts. Implementations shell out to
// ffmpeg or similar; paths are local temp files owned by the renderer.
type Renderer interface {
	// RenderFrame draws the page into a still image.
	RenderFrame(ctx context.Context, page Page) (framePath string, err error)

	// ComposePage overlays the narration audio on the frame, producing one
	// per-page clip.
	ComposePage(ctx context.Context, framePath, audioPath string) (clipPath string, err error)

	// Combine concatenates the per-page clips in order into the final video.
	Combine(ctx context.Context, clipPaths []string) (videoPath string, err error)
}

// Speech synthesizes narration audio from explanation text.
type Speech interface {
	Synthesize(ctx context.Context, text string) (audioPath string, err error)
}
