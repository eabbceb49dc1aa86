package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Moirius/La-Station-Prospection/internal/discovery"
	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/pkg/anthropic"
	"github.com/Moirius/La-Station-Prospection/pkg/capture"
	"github.com/Moirius/La-Station-Prospection/pkg/webfetch"
)

type mockAI struct {
	mock.Mock
}

var _ anthropic.Client = (*mockAI)(nil)

func (m *mockAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockWeb struct {
	mock.Mock
}

var _ webfetch.Client = (*mockWeb)(nil)

func (m *mockWeb) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockCapture struct {
	mock.Mock
}

var _ capture.Client = (*mockCapture)(nil)

func (m *mockCapture) AcquireSession(ctx context.Context) (capture.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(capture.Session), args.Error(1)
}

type mockSession struct {
	mock.Mock
}

var _ capture.Session = (*mockSession)(nil)

func (m *mockSession) Capture(ctx context.Context, profileURL, leadID, platform string) (string, error) {
	args := m.Called(ctx, profileURL, leadID, platform)
	return args.String(0), args.Error(1)
}

func (m *mockSession) Close() error {
	return m.Called().Error(0)
}

type mockSearcher struct {
	mock.Mock
}

var _ Searcher = (*mockSearcher)(nil)

func (m *mockSearcher) Search(ctx context.Context, req discovery.Request) ([]model.BusinessCandidate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusinessCandidate), args.Error(1)
}

// textResponse builds a plain text model reply.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}
