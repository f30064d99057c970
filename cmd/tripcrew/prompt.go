package main

import (
	"fmt"
	"strconv"
	"strings"

	"tripcrew/services"
)

// prompter is the slice of *liner.State used for interactive input.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// askMissing fills the request fields left empty on the command line.
// Origin and destination are asked until non-empty; the rest may be skipped.
func askMissing(p prompter, req *services.TripRequest) error {
	ask := func(label string, dst *string, required bool) error {
		for *dst == "" {
			answer, err := p.Prompt(label)
			if err != nil {
				return err
			}
			answer = strings.TrimSpace(answer)
			if answer != "" {
				p.AppendHistory(answer)
			}
			*dst = answer
			if !required {
				return nil
			}
		}
		return nil
	}

	if err := ask("Where are you starting from? ", &req.Origin, true); err != nil {
		return err
	}
	if err := ask("Where do you want to go? ", &req.Destination, true); err != nil {
		return err
	}

	days := ""
	if err := ask(fmt.Sprintf("How many days? [%d] ", req.Days), &days, false); err != nil {
		return err
	}
	if days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid number of days %q", days)
		}
		req.Days = n
	}

	if err := ask("Budget (optional): ", &req.Budget, false); err != nil {
		return err
	}
	return ask("Preferences (optional): ", &req.Preferences, false)
}
