package web

import "time"

type Category struct {
	Slug        string
	Name        string
	Description string
}

type Event struct {
	ID       string
	Title    string
	Category string
	StartsAt time.Time
	Venue    string
	City     string
	Price    float64 // naira, 0 for free events
	Featured bool
}

// Catalog is the read-only event listing shown on the browse pages.
type Catalog struct {
	categories []Category
	events     []Event
}

func NewCatalog(categories []Category, events []Event) *Catalog {
	return &Catalog{categories: categories, events: events}
}

func (c *Catalog) Categories() []Category { return c.categories }

func (c *Catalog) Category(slug string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Slug == slug {
			return cat, true
		}
	}
	return Category{}, false
}

// EventsIn lists the events of a category in catalog order.
func (c *Catalog) EventsIn(slug string) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Category == slug {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Featured() []Event {
	var out []Event
	for _, e := range c.events {
		if e.Featured {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Event(id string) (Event, bool) {
	for _, e := range c.events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.FixedZone("WAT", 3600))
}

// DefaultCatalog is the built-in listing.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]Category{
			{Slug: "music", Name: "Music", Description: "Concerts, live sets and campus gigs."},
			{Slug: "tech", Name: "Tech", Description: "Meetups, hackathons and developer conferences."},
			{Slug: "sports", Name: "Sports", Description: "Inter-faculty games and tournaments."},
			{Slug: "parties", Name: "Parties", Description: "Socials, mixers and themed nights."},
			{Slug: "arts", Name: "Arts & Culture", Description: "Theatre, exhibitions and spoken word."},
		},
		[]Event{
			{ID: "afrobeats-night", Title: "Afrobeats Night Live", Category: "music", StartsAt: date(2026, time.November, 14, 19), Venue: "Main Auditorium", City: "Lagos", Price: 5000, Featured: true},
			{ID: "acoustic-sundays", Title: "Acoustic Sundays", Category: "music", StartsAt: date(2026, time.November, 22, 17), Venue: "Senate Lawn", City: "Ibadan", Price: 2000},
			{ID: "devfest-campus", Title: "DevFest Campus Edition", Category: "tech", StartsAt: date(2026, time.November, 8, 9), Venue: "Engineering Hall", City: "Lagos", Price: 0, Featured: true},
			{ID: "hack-the-city", Title: "Hack the City", Category: "tech", StartsAt: date(2026, time.December, 5, 10), Venue: "Innovation Hub", City: "Abuja", Price: 1500},
			{ID: "faculty-cup-final", Title: "Faculty Cup Final", Category: "sports", StartsAt: date(2026, time.November, 29, 15), Venue: "Sports Complex", City: "Ile-Ife", Price: 1000, Featured: true},
			{ID: "freshers-mixer", Title: "Freshers Mixer", Category: "parties", StartsAt: date(2026, time.October, 31, 20), Venue: "Student Union Building", City: "Lagos", Price: 3500},
			{ID: "poetry-under-stars", Title: "Poetry Under the Stars", Category: "arts", StartsAt: date(2026, time.December, 12, 18), Venue: "Arts Theatre", City: "Nsukka", Price: 1200},
		},
	)
}
