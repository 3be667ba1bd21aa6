// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import "github.com/olegiv/campus-events/internal/model"

// Seed returns the demo catalog loaded at startup. College c3 starts
// unapproved so its events are hidden from students until an admin approves it.
func Seed() Data {
	return Data{
		Colleges: []model.College{
			{ID: "c1", Name: "Northbridge Institute of Technology", Approved: true},
			{ID: "c2", Name: "Riverside College of Arts", Approved: true},
			{ID: "c3", Name: "Lakeshore Engineering College", Approved: false},
			{ID: "c4", Name: "Summit University", Approved: true},
		},
		Categories: []model.Category{
			{ID: "cat1", Name: "Technology"},
			{ID: "cat2", Name: "Arts & Culture"},
			{ID: "cat3", Name: "Sports"},
			{ID: "cat4", Name: "E-Sports"},
			{ID: "cat5", Name: "Business"},
		},
		Events: []model.Event{
			{
				ID:              "e1",
				Name:            "CodeSprint 24h Hackathon",
				Description:     "Build anything in 24 hours with a team of up to four.",
				LongDescription: "Teams get **24 hours** to design, build and demo a working prototype.\n\nMentors from local startups are on site all night.",
				CollegeID:       "c1",
				CategoryID:      "cat1",
				Date:            "2026-11-14",
				Time:            "09:00",
				Location:        "Main Auditorium",
				ImageURL:        "https://picsum.photos/seed/codesprint/800/600",
				Rules:           []string{"Teams of 1-4 students", "All code must be written during the event", "Open-source libraries are allowed"},
				Prize:           "$2,000 and internship interviews",
				Participants: []model.Participant{
					{ID: "p1", Name: "Ada Lin", AvatarURL: "https://i.pravatar.cc/150?u=p1"},
					{ID: "p2", Name: "Marcus Reed", AvatarURL: "https://i.pravatar.cc/150?u=p2"},
				},
			},
			{
				ID:              "e2",
				Name:            "Valorant Campus Cup",
				Description:     "Five-a-side tactical shooter tournament, double elimination.",
				LongDescription: "Bring your squad and compete for the campus title. Matches are streamed live.",
				CollegeID:       "c1",
				CategoryID:      "cat4",
				Date:            "2026-11-21",
				Time:            "13:00",
				Location:        "Gaming Lab B2",
				ImageURL:        "https://picsum.photos/seed/valorant/800/600",
				Rules:           []string{"Teams of 5 plus one substitute", "Tournament client only"},
				Prize:           "Gaming peripherals for the winning team",
				Participants:    []model.Participant{},
			},
			{
				ID:              "e3",
				Name:            "Spring Canvas Exhibition",
				Description:     "Student painting and mixed-media showcase.",
				LongDescription: "An open gallery of student work across painting, print and mixed media.",
				CollegeID:       "c2",
				CategoryID:      "cat2",
				Date:            "2026-12-03",
				Time:            "17:30",
				Location:        "West Wing Gallery",
				ImageURL:        "https://picsum.photos/seed/canvas/800/600",
				Rules:           []string{"Up to three pieces per artist"},
				Prize:           "Featured spot in the city art fair",
				Participants:    []model.Participant{},
			},
			{
				ID:              "e4",
				Name:            "Inter-College Futsal League",
				Description:     "Weekly indoor football fixtures between college teams.",
				LongDescription: "Round robin league followed by knockout finals.",
				CollegeID:       "c4",
				CategoryID:      "cat3",
				Date:            "2026-11-08",
				Time:            "18:00",
				Location:        "Sports Complex Court 2",
				ImageURL:        "https://picsum.photos/seed/futsal/800/600",
				Rules:           []string{"Squads of up to 10 players", "Shin guards required"},
				Prize:           "League trophy",
				Participants:    []model.Participant{},
			},
			{
				ID:              "e5",
				Name:            "Future of AI Summit",
				Description:     "Talks and panels on applied machine learning and tech careers.",
				LongDescription: "A one-day technology summit with industry speakers, panels and a career fair.",
				CollegeID:       "c4",
				CategoryID:      "cat1",
				Date:            "2026-12-10",
				Time:            "10:00",
				Location:        "Convention Hall",
				ImageURL:        "https://picsum.photos/seed/aisummit/800/600",
				Rules:           []string{"Registration required"},
				Prize:           "",
				Participants:    []model.Participant{},
			},
			{
				ID:              "e6",
				Name:            "Startup Pitch Night",
				Description:     "Pitch your venture to alumni investors in five minutes.",
				LongDescription: "Selected teams pitch to a panel of alumni founders and angel investors.",
				CollegeID:       "c3",
				CategoryID:      "cat5",
				Date:            "2026-11-28",
				Time:            "19:00",
				Location:        "Innovation Hub",
				ImageURL:        "https://picsum.photos/seed/pitch/800/600",
				Rules:           []string{"Five minute pitch", "Three minute Q&A"},
				Prize:           "$5,000 seed grant",
				Participants:    []model.Participant{},
			},
		},
	}
}
