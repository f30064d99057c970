package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"

	"github.com/google/uuid"
)

// ─── Types ────────────────────────────────────────────────────────────────────

// TripRequest is the immutable input of one planning run.
type TripRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Days        int    `json:"days" binding:"required,min=1"`
	Budget      string `json:"budget"`
	Preferences string `json:"preferences"`
	People      int    `json:"people"`
}

func (r TripRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Origin) == "":
		return errors.New("origin is required")
	case strings.TrimSpace(r.Destination) == "":
		return errors.New("destination is required")
	case r.Days < 1:
		return errors.New("days must be at least 1")
	case r.People < 1:
		return errors.New("people must be at least 1")
	}
	return nil
}

type EventType string

const (
	EventStart EventType = "start"
	EventDone  EventType = "done"
	EventError EventType = "error"
	EventFinal EventType = "final"
)

// StageEvent reports pipeline progress. Result is nil on start events, the
// stage text on done, the failure message on error and the combined plan on
// final.
type StageEvent struct {
	RunID  string    `json:"run_id"`
	Type   EventType `json:"type"`
	Step   int       `json:"step"`
	Agent  string    `json:"agent"`
	Result *string   `json:"result"`
}

// Text returns Result or "" when it is nil.
func (e StageEvent) Text() string {
	if e.Result == nil {
		return ""
	}
	return *e.Result
}

type StageResult struct {
	Title   string
	Content string
}

// Agent is the persona a stage speaks through.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
}

func (a Agent) systemPrompt() string {
	return fmt.Sprintf("You are a %s. Your goal: %s\n\n%s", a.Role, a.Goal, a.Backstory)
}

// ─── Stages ───────────────────────────────────────────────────────────────────

const (
	stepResearch = iota + 1
	stepFlights
	stepItinerary
	stepBudget
	stepFinal

	finalAgent = "Crew"
)

var (
	ResearchAgent = Agent{
		Role: "Destination Research Specialist",
		Goal: "Research destinations and provide comprehensive information about attractions, culture, and activities",
		Backstory: "You are a seasoned travel researcher with extensive knowledge of destinations worldwide. " +
			"You excel at finding the best attractions, hidden gems, cultural experiences, and activities that match " +
			"travelers' preferences. You have deep knowledge of tourist attractions, cultural sites, restaurants, and local experiences.",
	}
	FlightAgent = Agent{
		Role: "Flight Booking Specialist",
		Goal: "Find the best flight options between origin and destination cities",
		Backstory: "You are an expert flight booking agent with extensive knowledge of flight routes, airlines, and " +
			"booking strategies. You provide recommendations on flight options, timing, and booking advice for the best travel experience.",
	}
	ItineraryAgent = Agent{
		Role: "Travel Itinerary Planner",
		Goal: "Create detailed day-by-day travel itineraries that optimize time and experiences",
		Backstory: "You are an expert travel itinerary planner with years of experience crafting perfect daily schedules " +
			"for travelers. You know how to balance sightseeing, rest, meals, and travel time. You consider factors like " +
			"opening hours, travel distances, and energy levels to create realistic and enjoyable itineraries.",
	}
	BudgetAgent = Agent{
		Role: "Travel Budget Analyst",
		Goal: "Provide accurate budget estimates and cost breakdowns for travel plans",
		Backstory: "You are a meticulous travel budget analyst with deep knowledge of travel costs worldwide. You provide " +
			"detailed breakdowns of expenses including flights, accommodation, food, activities, and transportation. " +
			"You're skilled at finding ways to optimize budgets while maintaining quality experiences.",
	}
)

// stage is one row of the fixed pipeline table. prompt receives the results
// of every stage that already completed, in step order.
type stage struct {
	step     int
	agent    Agent
	title    string
	expected func(TripRequest) string
	prompt   func(req TripRequest, prior []StageResult) string
}

var stages = []stage{
	{
		step:  stepResearch,
		agent: ResearchAgent,
		title: "Destination Research",
		expected: func(TripRequest) string {
			return "A comprehensive destination overview with attractions and activities"
		},
		prompt: func(r TripRequest, _ []StageResult) string {
			return fmt.Sprintf("Research the destination '%s' and provide:\n"+
				"1. Overview of the city/region\n"+
				"2. Top tourist attractions and points of interest\n"+
				"3. Local culture and customs\n"+
				"4. Best activities matching these preferences: %s\n\n"+
				"If you are unsure about real-time data, provide timeless highlights and typical attractions.",
				r.Destination, r.Preferences)
		},
	},
	{
		step:  stepFlights,
		agent: FlightAgent,
		title: "Flight Options",
		expected: func(TripRequest) string {
			return "Flight options and recommendations"
		},
		prompt: func(r TripRequest, _ []StageResult) string {
			return fmt.Sprintf("Consider the trip from %s to %s for %d traveler(s). Provide flight availability guidance,"+
				" typical routes, nearby airports, and booking tips. If exact live data is not available,"+
				" suggest general options and how to search effectively.",
				r.Origin, r.Destination, r.People)
		},
	},
	{
		step:  stepItinerary,
		agent: ItineraryAgent,
		title: "Itinerary",
		expected: func(r TripRequest) string {
			return fmt.Sprintf("A detailed %d-day itinerary with daily activities", r.Days)
		},
		prompt: func(r TripRequest, prior []StageResult) string {
			return fmt.Sprintf("Create a detailed %d-day itinerary for %s. Use these findings for context:\n\n"+
				"Destination research summary:\n%s\n\n"+
				"Preferences: %s\n\n"+
				"This trip is for %d traveler(s).\n"+
				"Requirements:\n- Balance sightseeing with rest\n- Consider travel time between locations\n"+
				"- Include meal suggestions\n- Format as Day 1, Day 2, etc., with morning/afternoon/evening",
				r.Days, r.Destination, prior[stepResearch-1].Content, r.Preferences, r.People)
		},
	},
	{
		step:  stepBudget,
		agent: BudgetAgent,
		title: "Budget",
		expected: func(TripRequest) string {
			return "Detailed budget breakdown with cost estimates"
		},
		prompt: func(r TripRequest, prior []StageResult) string {
			return fmt.Sprintf("Create a detailed budget breakdown for a %d-day trip to %s.\n"+
				"Travelers: %d people.\n"+
				"Total budget (entered): %s\n\n"+
				"Consider these references (summarize where needed):\n"+
				"- Flight options summary:\n%s\n\n"+
				"- Itinerary summary:\n%s\n\n"+
				"Include estimates for flights, accommodation (per night), daily food, activities, local transport, and misc.\n"+
				"Provide per-person and total costs, a daily breakdown and grand total, and compare with the stated budget.",
				r.Days, r.Destination, r.People, r.Budget,
				prior[stepFlights-1].Content, prior[stepItinerary-1].Content)
		},
	},
}

// ─── Pipeline ─────────────────────────────────────────────────────────────────

// Pipeline runs the four planning stages in order against a chat backend.
type Pipeline struct {
	backend  ChatBackend
	newRunID func() string
}

func NewPipeline(backend ChatBackend) *Pipeline {
	return &Pipeline{backend: backend, newRunID: uuid.NewString}
}

// Run returns a lazy event sequence for one planning run. Nothing happens
// until the caller ranges over it; each stage's backend call blocks before
// the next event is produced. The first failure yields one error event and
// ends the sequence, and a successful run ends with a single final event.
// Breaking out of the loop stops the run before the next stage.
func (p *Pipeline) Run(ctx context.Context, req TripRequest) iter.Seq[StageEvent] {
	return func(yield func(StageEvent) bool) {
		runID := p.newRunID()
		emit := func(t EventType, step int, agent string, result *string) bool {
			return yield(StageEvent{RunID: runID, Type: t, Step: step, Agent: agent, Result: result})
		}

		results := make([]StageResult, 0, len(stages))
		for _, st := range stages {
			if !emit(EventStart, st.step, st.agent.Role, nil) {
				return
			}
			log.Printf("🔄 [%s] step %d: %s working", runID, st.step, st.agent.Role)

			text, err := p.runStage(ctx, st, req, results)
			if err != nil {
				log.Printf("❌ [%s] step %d: %s failed: %v", runID, st.step, st.agent.Role, err)
				msg := err.Error()
				emit(EventError, st.step, st.agent.Role, &msg)
				return
			}

			results = append(results, StageResult{Title: st.title, Content: text})
			log.Printf("✅ [%s] step %d: %s completed (%d chars)", runID, st.step, st.agent.Role, len(text))
			if !emit(EventDone, st.step, st.agent.Role, &text) {
				return
			}
		}

		final := CombineSections(results)
		emit(EventFinal, stepFinal, finalAgent, &final)
	}
}

func (p *Pipeline) runStage(ctx context.Context, st stage, req TripRequest, prior []StageResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.backend.Chat(ctx, stageMessages(st, req, prior))
}

// stageMessages builds the system + user messages for a stage. Output is a
// pure function of its inputs.
func stageMessages(st stage, req TripRequest, prior []StageResult) []ChatMessage {
	user := st.prompt(req, prior) + "\n\nExpected output: " + st.expected(req)
	return []ChatMessage{
		{Role: "system", Content: st.agent.systemPrompt()},
		{Role: "user", Content: user},
	}
}

// CombineSections renders results as "## <title>\n\n<content>\n" blocks
// separated by blank lines.
func CombineSections(results []StageResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s\n", r.Title, r.Content))
	}
	return strings.Join(parts, "\n")
}
