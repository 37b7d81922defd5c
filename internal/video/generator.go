package video

import (
	"context"
	"fmt"
	"sync"

	"github.com/appdever01/pilox-backend/internal/progress"
)

// Generator renders pages into a combined video, reporting step counts to
// the progress tracker. Each page contributes three steps (frame, audio,
// clip) and the final combine is one more, so totalSteps = pages*3 + 1.
type Generator struct {
	renderer Renderer
	speech   Speech
	tracker  *progress.Tracker
}

// NewGenerator creates a generator.
func NewGenerator(renderer Renderer, speech Speech, tracker *progress.Tracker) *Generator {
	return &Generator{renderer: renderer, speech: speech, tracker: tracker}
}

// Generate renders all pages in parallel and combines them. Any page failure
// cancels the remaining pages and fails the whole run; a partial video is
// never produced.
func (g *Generator) Generate(ctx context.Context, generationID string, pages []Page) (string, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages to render")
	}

	totalSteps := len(pages)*3 + 1
	phase := progress.PhaseProcessing
	message := "Rendering pages..."
	completed := 0

	var mu sync.Mutex
	step := func() {
		mu.Lock()
		completed++
		done := completed
		mu.Unlock()
		g.tracker.Update(ctx, generationID, progress.Update{
			Phase:          &phase,
			Message:        &message,
			CompletedSteps: &done,
			TotalSteps:     &totalSteps,
		})
	}

	pageCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	clips := make([]string, len(pages))
	errs := make([]error, len(pages))

	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page Page) {
			defer wg.Done()

			clip, err := g.renderPage(pageCtx, page, step)
			if err != nil {
				errs[i] = fmt.Errorf("page %d: %w", page.Number, err)
				cancel()
				return
			}
			clips[i] = clip
		}(i, page)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return "", err
		}
	}

	message = "Combining video..."
	videoPath, err := g.renderer.Combine(ctx, clips)
	if err != nil {
		return "", fmt.Errorf("combine: %w", err)
	}
	step()

	return videoPath, nil
}

func (g *Generator) renderPage(ctx context.Context, page Page, step func()) (string, error) {
	framePath, err := g.renderer.RenderFrame(ctx, page)
	if err != nil {
		return "", fmt.Errorf("render frame: %w", err)
	}
	step()

	audioPath, err := g.speech.Synthesize(ctx, page.Explanation)
	if err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}
	step()

	clipPath, err := g.renderer.ComposePage(ctx, framePath, audioPath)
	if err != nil {
		return "", fmt.Errorf("compose clip: %w", err)
	}
	step()

	return clipPath, nil
}
