// Package advice answers free-text safety questions, remotely when a chat
// model is configured and from a local keyword table otherwise.
package advice

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go-safeher/types"

	"gopkg.in/yaml.v3"
)

var ErrEmptyTable = errors.New("advice keyword table is empty")

// DefaultTable is checked in order; the first keyword found wins.
var DefaultTable = []types.AdviceEntry{
	{Keyword: "night", Text: `Staying safe at night:
• Stick to well-lit, busy streets and avoid shortcuts through isolated areas.
• Share your live location with someone you trust.
• Keep your phone charged and your hands free.
• Walk with confidence and stay aware; keep headphones off or low.
• If you feel followed, go into an open shop or other public place and call for help.`},
	{Keyword: "follow", Text: `If you think you are being followed:
• Do not go home. Head to a busy public place such as a shop, café or station.
• Cross the street or change direction to confirm your suspicion.
• Call someone and tell them where you are.
• If you are in danger, call your local emergency number immediately.`},
	{Keyword: "stalk", Text: `Dealing with stalking:
• Keep a record of every incident with dates, times and screenshots.
• Do not engage with the stalker.
• Tell friends, family and your workplace.
• Report it to the police and ask about protective orders.`},
	{Keyword: "harass", Text: `Responding to harassment:
• Move away and get to a safe, public spot.
• Say "No" or "Stop" loudly and clearly if it is safe to do so.
• Note details: appearance, location, time, vehicle number.
• Report it to the authorities or the venue's staff.`},
	{Keyword: "cab", Text: `Safe ride tips:
• Check the plate, driver and car model match the app before getting in.
• Sit in the back seat and share your trip details with a friend.
• Keep the map open on your phone to follow the route.
• Trust your instincts: ask to stop in a busy area if something feels wrong.`},
	{Keyword: "taxi", Text: `Safe ride tips:
• Use licensed taxis or booked rides rather than street offers.
• Share your trip and the vehicle number with someone you trust.
• Sit in the back seat and keep your belongings with you.
• Ask to stop in a busy area if something feels wrong.`},
	{Keyword: "travel", Text: `Travelling safely:
• Share your itinerary and check in regularly with someone at home.
• Research safe neighbourhoods and transport before you arrive.
• Keep copies of important documents and emergency numbers offline.
• Avoid revealing that you are alone or where you are staying.`},
	{Keyword: "online", Text: `Staying safe online:
• Keep personal details like your address and routine off public profiles.
• Use strong, unique passwords and two-factor authentication.
• Block and report accounts that harass or threaten you.
• Meet online contacts only in public places and tell a friend first.`},
	{Keyword: "home", Text: `Home safety:
• Keep doors and windows locked, even when you are in.
• Do not open the door to strangers; verify visitors first.
• Keep emergency numbers saved and your phone within reach.
• Get to know neighbours you can call on for help.`},
	{Keyword: "drink", Text: `Staying safe when going out:
• Never leave your drink unattended and watch it being poured.
• Stay with friends and agree on a plan to get home together.
• If you feel unusually drunk or unwell, tell someone you trust right away.
• Keep money aside for a safe ride home.`},
}

const genericChecklist = `General safety tips:
• Trust your instincts; if something feels wrong, leave.
• Share your location with someone you trust.
• Stay in well-lit, populated areas.
• Keep your phone charged and emergency numbers handy.
• In an emergency, call your local emergency number immediately.
• Switch to Emergency mode to find nearby police stations and hospitals.`

// Fallback is the deterministic, network-free advisor.
type Fallback struct {
	table []types.AdviceEntry
}

func NewFallback(table []types.AdviceEntry) (*Fallback, error) {
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	entries := make([]types.AdviceEntry, 0, len(table))
	for i, e := range table {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" || strings.TrimSpace(e.Text) == "" {
			return nil, fmt.Errorf("advice entry %d: keyword and text are required", i)
		}
		entries = append(entries, types.AdviceEntry{Keyword: kw, Text: e.Text})
	}
	return &Fallback{table: entries}, nil
}

// DefaultFallback returns a Fallback over DefaultTable.
func DefaultFallback() *Fallback {
	f, err := NewFallback(DefaultTable)
	if err != nil {
		panic(err)
	}
	return f
}

// Advise returns the text of the first keyword contained in the question,
// or the generic checklist.
func (f *Fallback) Advise(question string) string {
	q := strings.ToLower(question)
	for _, e := range f.table {
		if strings.Contains(q, e.Keyword) {
			return e.Text
		}
	}
	return genericChecklist
}

// LoadTable reads an advice table from a YAML list of {keyword, text}.
func LoadTable(path string) ([]types.AdviceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read advice table: %w", err)
	}
	var table []types.AdviceEntry
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse advice table %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	return table, nil
}
