package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend answers call n with "R<n>" and fails on call failOn.
type scriptedBackend struct {
	calls  [][]ChatMessage
	failOn int
	err    error
}

func (b *scriptedBackend) Chat(_ context.Context, messages []ChatMessage) (string, error) {
	b.calls = append(b.calls, messages)
	n := len(b.calls)
	if n == b.failOn {
		return "", b.err
	}
	return fmt.Sprintf("R%d", n), nil
}

func newTestPipeline(b ChatBackend) *Pipeline {
	p := NewPipeline(b)
	p.newRunID = func() string { return "run-1" }
	return p
}

var testTrip = TripRequest{
	Origin:      "New York",
	Destination: "Tokyo",
	Days:        5,
	Budget:      "$3000",
	Preferences: "food, temples",
	People:      2,
}

func collect(ctx context.Context, p *Pipeline, req TripRequest) []StageEvent {
	var events []StageEvent
	for ev := range p.Run(ctx, req) {
		events = append(events, ev)
	}
	return events
}

type eventKey struct {
	Type  EventType
	Step  int
	Agent string
}

func keys(events []StageEvent) []eventKey {
	out := make([]eventKey, len(events))
	for i, ev := range events {
		out[i] = eventKey{ev.Type, ev.Step, ev.Agent}
	}
	return out
}

func TestPipeline_Success(t *testing.T) {
	b := &scriptedBackend{}
	events := collect(context.Background(), newTestPipeline(b), testTrip)

	assert.Equal(t, []eventKey{
		{EventStart, 1, ResearchAgent.Role},
		{EventDone, 1, ResearchAgent.Role},
		{EventStart, 2, FlightAgent.Role},
		{EventDone, 2, FlightAgent.Role},
		{EventStart, 3, ItineraryAgent.Role},
		{EventDone, 3, ItineraryAgent.Role},
		{EventStart, 4, BudgetAgent.Role},
		{EventDone, 4, BudgetAgent.Role},
		{EventFinal, 5, "Crew"},
	}, keys(events))

	for _, ev := range events {
		assert.Equal(t, "run-1", ev.RunID)
		if ev.Type == EventStart {
			assert.Nil(t, ev.Result)
		}
	}
	assert.Equal(t, "R3", events[5].Text())

	want := "## Destination Research\n\nR1\n\n" +
		"## Flight Options\n\nR2\n\n" +
		"## Itinerary\n\nR3\n\n" +
		"## Budget\n\nR4\n"
	assert.Equal(t, want, events[len(events)-1].Text())
	assert.Len(t, b.calls, 4)
}

func TestPipeline_PromptsCarryPriorResults(t *testing.T) {
	b := &scriptedBackend{}
	collect(context.Background(), newTestPipeline(b), testTrip)
	require.Len(t, b.calls, 4)

	research := b.calls[0]
	require.Len(t, research, 2)
	assert.Equal(t, "system", research[0].Role)
	assert.Equal(t, ResearchAgent.systemPrompt(), research[0].Content)
	assert.Equal(t, "user", research[1].Role)
	assert.Contains(t, research[1].Content, "Research the destination 'Tokyo'")
	assert.Contains(t, research[1].Content, "food, temples")
	assert.True(t, strings.HasSuffix(research[1].Content,
		"\n\nExpected output: A comprehensive destination overview with attractions and activities"))

	flights := b.calls[1][1].Content
	assert.Contains(t, flights, "from New York to Tokyo for 2 traveler(s)")

	itinerary := b.calls[2][1].Content
	assert.Contains(t, itinerary, "Create a detailed 5-day itinerary for Tokyo")
	assert.Contains(t, itinerary, "Destination research summary:\nR1\n")
	assert.Contains(t, itinerary, "Expected output: A detailed 5-day itinerary with daily activities")

	budget := b.calls[3][1].Content
	assert.Equal(t, BudgetAgent.systemPrompt(), b.calls[3][0].Content)
	assert.Contains(t, budget, "Total budget (entered): $3000")
	assert.Contains(t, budget, "- Flight options summary:\nR2\n")
	assert.Contains(t, budget, "- Itinerary summary:\nR3\n")
	assert.NotContains(t, budget, "R1")
}

func TestPipeline_StageFailureStopsRun(t *testing.T) {
	b := &scriptedBackend{failOn: 2, err: errors.New("rate limited")}
	events := collect(context.Background(), newTestPipeline(b), testTrip)

	assert.Equal(t, []eventKey{
		{EventStart, 1, ResearchAgent.Role},
		{EventDone, 1, ResearchAgent.Role},
		{EventStart, 2, FlightAgent.Role},
		{EventError, 2, FlightAgent.Role},
	}, keys(events))
	assert.Equal(t, "rate limited", events[3].Text())
	assert.Len(t, b.calls, 2)
}

func TestPipeline_FirstStageFailure(t *testing.T) {
	b := &scriptedBackend{failOn: 1, err: ErrLLMNotConfigured}
	events := collect(context.Background(), newTestPipeline(b), testTrip)

	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[1].Type)
	assert.Equal(t, 1, events[1].Step)
	assert.Equal(t, ErrLLMNotConfigured.Error(), events[1].Text())
}

func TestPipeline_SameInputSameOutput(t *testing.T) {
	first := collect(context.Background(), newTestPipeline(&scriptedBackend{}), testTrip)
	second := collect(context.Background(), newTestPipeline(&scriptedBackend{}), testTrip)

	assert.Equal(t, first[len(first)-1].Text(), second[len(second)-1].Text())
}

func TestPipeline_BreakStopsRun(t *testing.T) {
	b := &scriptedBackend{}
	for ev := range newTestPipeline(b).Run(context.Background(), testTrip) {
		if ev.Type == EventDone {
			break
		}
	}
	assert.Len(t, b.calls, 1)
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &scriptedBackend{}
	events := collect(ctx, newTestPipeline(b), testTrip)

	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[1].Type)
	assert.Equal(t, context.Canceled.Error(), events[1].Text())
	assert.Empty(t, b.calls)
}

func TestPipeline_LazyUntilRanged(t *testing.T) {
	b := &scriptedBackend{}
	_ = newTestPipeline(b).Run(context.Background(), testTrip)
	assert.Empty(t, b.calls)
}

func TestNewPipeline_RunIDsDiffer(t *testing.T) {
	p := NewPipeline(&scriptedBackend{})
	a := collect(context.Background(), p, testTrip)
	b := collect(context.Background(), p, testTrip)
	assert.NotEmpty(t, a[0].RunID)
	assert.NotEqual(t, a[0].RunID, b[0].RunID)
}

func TestTripRequest_Validate(t *testing.T) {
	assert.NoError(t, testTrip.Validate())

	r := testTrip
	r.Origin = "  "
	assert.ErrorContains(t, r.Validate(), "origin")

	r = testTrip
	r.Destination = ""
	assert.ErrorContains(t, r.Validate(), "destination")

	r = testTrip
	r.Days = 0
	assert.ErrorContains(t, r.Validate(), "days")

	r = testTrip
	r.People = 0
	assert.ErrorContains(t, r.Validate(), "people")
}

func TestCombineSections(t *testing.T) {
	assert.Equal(t, "", CombineSections(nil))
	assert.Equal(t, "## A\n\nx\n", CombineSections([]StageResult{{Title: "A", Content: "x"}}))
}
