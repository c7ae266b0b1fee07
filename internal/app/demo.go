package app

import (
	"time"

	"rideshare/internal/event"
)

// DemoEvents are saved on start when SEED_EVENTS is on.
func DemoEvents() []event.Event {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 1, 0)
	return []event.Event{
		{
			ID:          "bay-area-devfest",
			Name:        "Bay Area DevFest",
			Location:    "Moscone West",
			City:        "San Francisco",
			State:       "CA",
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 2),
			Description: "Two days of talks and workshops.",
			Airports: []event.Airport{
				{Code: "SFO", Name: "San Francisco International Airport", City: "San Francisco"},
				{Code: "SJC", Name: "Norman Y. Mineta San Jose International Airport", City: "San Jose"},
				{Code: "OAK", Name: "Oakland International Airport", City: "Oakland"},
			},
		},
		{
			ID:        "la-gophers",
			Name:      "LA Gophers Summit",
			Location:  "Convention Center",
			City:      "Los Angeles",
			State:     "CA",
			StartDate: start.AddDate(0, 0, 14),
			EndDate:   start.AddDate(0, 0, 15),
			Airports: []event.Airport{
				{Code: "LAX", Name: "Los Angeles International Airport", City: "Los Angeles"},
				{Code: "BUR", Name: "Hollywood Burbank Airport", City: "Burbank"},
			},
		},
	}
}
