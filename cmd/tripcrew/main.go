// Command tripcrew plans a trip from the terminal: it asks for anything not
// given on the command line, streams each planning stage as it runs, prints
// the finished plan and saves it as a PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"tripcrew/config"
	"tripcrew/database"
	"tripcrew/services"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
)

func main() {
	var (
		req         services.TripRequest
		outDir      string
		showFlights bool
		noPDF       bool
	)
	flag.StringVar(&req.Origin, "origin", "", "where the trip starts (city, country or airport code)")
	flag.StringVar(&req.Destination, "destination", "", "where to go (city, country or a kind of place)")
	flag.IntVar(&req.Days, "days", 5, "trip length in days")
	flag.StringVar(&req.Budget, "budget", "", "total budget, any currency")
	flag.StringVar(&req.Preferences, "preferences", "", "interests, e.g. food, hiking, family-friendly")
	flag.IntVar(&req.People, "people", 1, "number of travelers")
	flag.StringVar(&outDir, "out", ".", "directory for the PDF")
	flag.BoolVar(&showFlights, "flights", false, "print estimated flight options before planning")
	flag.BoolVar(&noPDF, "no-pdf", false, "skip writing the PDF")
	flag.Parse()

	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration: %v", err)
	}

	if req.Origin == "" || req.Destination == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fatal("-origin and -destination are required when stdin is not a terminal")
		}
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		err := askMissing(line, &req)
		line.Close()
		if err != nil {
			fatal("input aborted: %v", err)
		}
	}
	if err := req.Validate(); err != nil {
		fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(titleStyle.Render("🌍 TripCrew"))
	printSummary(req)

	if showFlights {
		if err := printFlights(ctx, cfg, req); err != nil {
			fmt.Println(errorStyle.Render("⚠️  " + err.Error()))
		}
	}

	plan, ok := runPipeline(ctx, services.NewPipeline(services.NewLLMClient(cfg)), req)
	if !ok {
		os.Exit(1)
	}

	fmt.Println()
	fmt.Print(renderMarkdown(services.CleanForDisplay(plan)))

	if noPDF {
		return
	}
	path, err := writePDF(plan, req, outDir, time.Now())
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(doneStyle.Render("📄 Saved " + path))
}

// runPipeline drives one run, printing a status line per event. It returns
// the combined plan and false when a stage failed.
func runPipeline(ctx context.Context, p *services.Pipeline, req services.TripRequest) (string, bool) {
	for ev := range p.Run(ctx, req) {
		if line := statusLine(ev); line != "" {
			fmt.Println(line)
		}
		switch ev.Type {
		case services.EventError:
			return "", false
		case services.EventFinal:
			return ev.Text(), true
		}
	}
	return "", false
}

func statusLine(ev services.StageEvent) string {
	switch ev.Type {
	case services.EventStart:
		return workingStyle.Render(fmt.Sprintf("🔄 [%d/4] %s working...", ev.Step, ev.Agent))
	case services.EventDone:
		return doneStyle.Render(fmt.Sprintf("✅ [%d/4] %s completed", ev.Step, ev.Agent))
	case services.EventError:
		return errorStyle.Render(fmt.Sprintf("❌ %s failed: %s", ev.Agent, ev.Text()))
	case services.EventFinal:
		return doneStyle.Render("🎉 Crew execution completed! Your trip plan is ready.")
	}
	return ""
}

func printSummary(req services.TripRequest) {
	row := func(label, value string) {
		if value != "" {
			fmt.Println(labelStyle.Render(label) + value)
		}
	}
	row("From", req.Origin)
	row("To", req.Destination)
	row("Days", fmt.Sprint(req.Days))
	row("People", fmt.Sprint(req.People))
	row("Budget", req.Budget)
	row("Preferences", req.Preferences)
	fmt.Println()
}

func printFlights(ctx context.Context, cfg config.Config, req services.TripRequest) error {
	airports, store, err := database.LoadAirportTable(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	resolver := services.NewAirportResolver(airports, services.NewOpenTripMapGeocoder(cfg.GeocodeAPIKey, cfg.GeocodeBaseURL))
	from, ok := resolver.Resolve(ctx, req.Origin)
	if !ok {
		return fmt.Errorf("no airport found for %q", req.Origin)
	}
	to, ok := resolver.Resolve(ctx, req.Destination)
	if !ok {
		return fmt.Errorf("no airport found for %q", req.Destination)
	}

	synth := services.NewFlightSynthesizer(airports, services.NewOpenSkyProbe(cfg.OpenSkyBaseURL))
	result, err := synth.Search(ctx, from, to, 5)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("✈️  Estimated flights %s → %s", from, to)))
	for _, f := range result.Flights {
		stops := "direct"
		if f.Stops > 0 {
			stops = fmt.Sprintf("%d stop", f.Stops)
		}
		fmt.Printf("  %s  %8.2f %s  %-8s %-7s  %6.1f kg CO2\n",
			f.Departure, f.Price, result.Currency, services.FormatDuration(f.Duration), stops, f.CO2Kg)
	}
	fmt.Println()
	return nil
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func writePDF(plan string, req services.TripRequest, dir string, now time.Time) (string, error) {
	data, err := services.RenderPlanPDF(plan, "Trip Plan")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, services.ExportFilename(req.Origin, req.Destination, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	return path, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("❌ "+fmt.Sprintf(format, args...)))
	os.Exit(1)
}
