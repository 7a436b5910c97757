package devserver

import (
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/client"
	"github.com/luisthe-dev/myinvite-go/internal/session"

	"github.com/brianvoe/gofakeit/v6"
)

// seeded fake data, stable across restarts so the CLI and tests can rely on it
const dataSeed = 7

type dataSet struct {
	events  []client.Event
	users   []session.Principal
	tickets map[int][]client.Ticket // keyed by principal id
}

func seedData(eventCount, userCount int) *dataSet {
	faker := gofakeit.New(dataSeed)

	data := &dataSet{
		tickets: map[int][]client.Ticket{},
	}

	for i := 1; i <= eventCount; i++ {
		data.events = append(data.events, client.Event{
			ID:          i,
			Title:       faker.Sentence(3),
			Venue:       faker.Company(),
			City:        faker.City(),
			StartsAt:    time.Now().Add(time.Duration(faker.Number(24, 24*60)) * time.Hour),
			PriceCents:  faker.Number(500, 25000),
			TicketsLeft: faker.Number(0, 400),
		})
	}

	for i := 1; i <= userCount; i++ {
		data.users = append(data.users, session.Principal{
			ID:       i,
			Role:     "user",
			FullName: faker.Name(),
			Email:    faker.Email(),
		})
	}

	// every user holds a ticket or two for some seeded event
	ticketID := 1
	for _, user := range data.users {
		for t := 0; t < faker.Number(1, 2); t++ {
			event := data.events[faker.Number(0, len(data.events)-1)]
			data.tickets[user.ID] = append(data.tickets[user.ID], client.Ticket{
				ID:         ticketID,
				EventID:    event.ID,
				EventTitle: event.Title,
				Code:       faker.UUID(),
				Status:     "issued",
				IssuedAt:   time.Now().Add(-time.Duration(faker.Number(1, 72)) * time.Hour),
			})
			ticketID++
		}
	}

	return data
}

func (d *dataSet) eventByID(id int) (*client.Event, bool) {
	for i := range d.events {
		if d.events[i].ID == id {
			return &d.events[i], true
		}
	}
	return nil, false
}

func (d *dataSet) dashboardStats() client.DashboardStats {
	stats := client.DashboardStats{
		TotalUsers:  len(d.users),
		TotalEvents: len(d.events),
	}
	for _, event := range d.events {
		if event.TicketsLeft > 0 {
			stats.ActiveEvents++
		}
	}
	for _, userTickets := range d.tickets {
		for _, ticket := range userTickets {
			stats.TicketsSold++
			if event, ok := d.eventByID(ticket.EventID); ok {
				stats.RevenueCents += event.PriceCents
			}
		}
	}
	return stats
}
