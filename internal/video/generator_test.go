package video

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdever01/pilox-backend/internal/progress"
)

type mockRenderer struct {
	renderFrameFn func(ctx context.Context, page Page) (string, error)
	composePageFn func(ctx context.Context, framePath, audioPath string) (string, error)
	combineFn     func(ctx context.Context, clipPaths []string) (string, error)
}

func (m *mockRenderer) RenderFrame(ctx context.Context, page Page) (string, error) {
	return m.renderFrameFn(ctx, page)
}

func (m *mockRenderer) ComposePage(ctx context.Context, framePath, audioPath string) (string, error) {
	return m.composePageFn(ctx, framePath, audioPath)
}

func (m *mockRenderer) Combine(ctx context.Context, clipPaths []string) (string, error) {
	return m.combineFn(ctx, clipPaths)
}

type mockSpeech struct {
	synthesizeFn func(ctx context.Context, text string) (string, error)
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string) (string, error) {
	return m.synthesizeFn(ctx, text)
}

func happyRenderer() *mockRenderer {
	return &mockRenderer{
		renderFrameFn: func(ctx context.Context, page Page) (string, error) {
			return fmt.Sprintf("frame-%d.png", page.Number), nil
		},
		composePageFn: func(ctx context.Context, framePath, audioPath string) (string, error) {
			return "clip-" + framePath, nil
		},
		combineFn: func(ctx context.Context, clipPaths []string) (string, error) {
			return "final.mp4", nil
		},
	}
}

func happySpeech() *mockSpeech {
	return &mockSpeech{
		synthesizeFn: func(ctx context.Context, text string) (string, error) {
			return "audio.mp3", nil
		},
	}
}

func testPages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Number: i + 1, Explanation: fmt.Sprintf("page %d", i+1)}
	}
	return pages
}

func TestGenerateProducesCombinedVideo(t *testing.T) {
	tracker := progress.NewTracker(progress.NewMemoryStore())
	gen := NewGenerator(happyRenderer(), happySpeech(), tracker)

	path, err := gen.Generate(context.Background(), "gen-1", testPages(4))
	require.NoError(t, err)
	assert.Equal(t, "final.mp4", path)

	record, err := tracker.Get(context.Background(), "gen-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	// 4 pages * 3 steps + 1 combine
	assert.Equal(t, 13, record.TotalSteps)
	assert.Equal(t, 13, record.CompletedSteps)
	assert.Equal(t, 100, record.Percentage)
}

func TestGenerateFailsWholeRunOnPageFailure(t *testing.T) {
	renderer := happyRenderer()
	renderer.renderFrameFn = func(ctx context.Context, page Page) (string, error) {
		if page.Number == 2 {
			return "", errors.New("render crashed")
		}
		return fmt.Sprintf("frame-%d.png", page.Number), nil
	}

	var combined int32
	renderer.combineFn = func(ctx context.Context, clipPaths []string) (string, error) {
		atomic.AddInt32(&combined, 1)
		return "final.mp4", nil
	}

	tracker := progress.NewTracker(progress.NewMemoryStore())
	gen := NewGenerator(renderer, happySpeech(), tracker)

	_, err := gen.Generate(context.Background(), "gen-1", testPages(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.EqualValues(t, 0, atomic.LoadInt32(&combined), "no partial video should be combined")
}

func TestGeneratePageFailureCancelsSiblings(t *testing.T) {
	renderer := happyRenderer()
	renderer.renderFrameFn = func(ctx context.Context, page Page) (string, error) {
		if page.Number == 1 {
			return "", errors.New("boom")
		}
		// Siblings observe the cancellation.
		<-ctx.Done()
		return "", ctx.Err()
	}

	tracker := progress.NewTracker(progress.NewMemoryStore())
	gen := NewGenerator(renderer, happySpeech(), tracker)

	_, err := gen.Generate(context.Background(), "gen-1", testPages(3))
	require.Error(t, err)
}

func TestGenerateRejectsEmptyPages(t *testing.T) {
	tracker := progress.NewTracker(progress.NewMemoryStore())
	gen := NewGenerator(happyRenderer(), happySpeech(), tracker)

	_, err := gen.Generate(context.Background(), "gen-1", nil)
	require.Error(t, err)
}

func TestGenerateSpeechFailureFailsRun(t *testing.T) {
	speech := &mockSpeech{
		synthesizeFn: func(ctx context.Context, text string) (string, error) {
			return "", errors.New("tts unavailable")
		},
	}

	tracker := progress.NewTracker(progress.NewMemoryStore())
	gen := NewGenerator(happyRenderer(), speech, tracker)

	_, err := gen.Generate(context.Background(), "gen-1", testPages(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesize narration")
}
