// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-events/internal/catalog"
	"github.com/olegiv/campus-events/internal/model"
)

type recs struct {
	loading bool
	ids     []string
}

func (r recs) Loading() bool { return r.loading }

func (r recs) Has(id string) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

func testData() catalog.Data {
	return catalog.Data{
		Colleges: []model.College{
			{ID: "c1", Name: "North", Approved: true},
			{ID: "c2", Name: "South", Approved: false},
			{ID: "c3", Name: "East", Approved: true},
		},
		Categories: []model.Category{
			{ID: "tech", Name: "Technology"},
			{ID: "art", Name: "Arts"},
		},
		Events: []model.Event{
			{ID: "e1", Name: "Hackathon", CollegeID: "c1", CategoryID: "tech", Date: "2026-11-14", Location: "Hall A"},
			{ID: "e2", Name: "Gallery Night", CollegeID: "c1", CategoryID: "art", Date: "2026-12-03", Location: "Café Lumière"},
			{ID: "e3", Name: "Robotics Expo", CollegeID: "c2", CategoryID: "tech", Date: "2026-12-10"},
			{ID: "e4", Name: "Pitch Day", CollegeID: "c3", CategoryID: "tech", Date: "bad-date"},
		},
	}
}

func ids(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestStudentEvents_AllAllIsApprovedOnly(t *testing.T) {
	got := StudentEvents(testData(), Filter{}, nil)

	assert.Equal(t, []string{"e1", "e2", "e4"}, ids(got.Events))
	assert.Equal(t, FilterAll, got.Filter.Category)
	assert.Equal(t, FilterAll, got.Filter.College)
	assert.Nil(t, got.Empty)
}

func TestStudentEvents_OneApprovedOneNot(t *testing.T) {
	data := catalog.Data{
		Colleges: []model.College{
			{ID: "a", Approved: true},
			{ID: "b", Approved: false},
		},
		Events: []model.Event{
			{ID: "x", CollegeID: "a"},
			{ID: "y", CollegeID: "b"},
		},
	}

	got := StudentEvents(data, Filter{Category: FilterAll, College: FilterAll}, nil)
	assert.Equal(t, []string{"x"}, ids(got.Events))
}

func TestStudentEvents_ToggleApprovalHidesAndRestores(t *testing.T) {
	store := catalog.New(testData())

	store.ToggleCollegeApproval("c1")
	got := StudentEvents(store.Snapshot(), Filter{}, nil)
	assert.Equal(t, []string{"e4"}, ids(got.Events))

	store.ToggleCollegeApproval("c1")
	got = StudentEvents(store.Snapshot(), Filter{}, nil)
	assert.Equal(t, []string{"e1", "e2", "e4"}, ids(got.Events))
}

func TestStudentEvents_CategoryAndCollegeFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"category", Filter{Category: "tech"}, []string{"e1", "e4"}},
		{"college", Filter{College: "c1"}, []string{"e1", "e2"}},
		{"both", Filter{Category: "tech", College: "c3"}, []string{"e4"}},
		{"unapproved college", Filter{College: "c2"}, []string{}},
		{"unknown category", Filter{Category: "nope"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StudentEvents(testData(), tt.filter, nil)
			assert.Equal(t, tt.want, ids(got.Events))
		})
	}
}

func TestStudentEvents_ForYou(t *testing.T) {
	rec := recs{ids: []string{"e2", "e3", "ghost"}}

	got := StudentEvents(testData(), Filter{Category: FilterForYou}, rec)

	// e3 is recommended but belongs to an unapproved college; ghost is unknown.
	assert.Equal(t, []string{"e2"}, ids(got.Events))
	assert.True(t, got.Events[0].Recommended)
}

func TestStudentEvents_ForYouIgnoresCollegeFilter(t *testing.T) {
	rec := recs{ids: []string{"e4"}}

	got := StudentEvents(testData(), Filter{Category: FilterForYou, College: "c1"}, rec)
	assert.Equal(t, []string{"e4"}, ids(got.Events))
}

func TestStudentEvents_ForYouLoading(t *testing.T) {
	got := StudentEvents(testData(), Filter{Category: FilterForYou}, recs{loading: true})

	assert.True(t, got.Loading)
	assert.Equal(t, LoadingMessage, got.Message)
	assert.Empty(t, got.Events)
	assert.Nil(t, got.Empty)
}

func TestStudentEvents_LoadingDoesNotBlockOtherFilters(t *testing.T) {
	got := StudentEvents(testData(), Filter{}, recs{loading: true})

	assert.False(t, got.Loading)
	assert.Len(t, got.Events, 3)
}

func TestStudentEvents_EmptyStates(t *testing.T) {
	got := StudentEvents(testData(), Filter{Category: FilterForYou}, recs{})
	require.NotNil(t, got.Empty)
	assert.Equal(t, EmptyTitle, got.Empty.Title)
	assert.Equal(t, EmptyForYouMessage, got.Empty.Message)

	got = StudentEvents(testData(), Filter{Category: FilterForYou}, nil)
	require.NotNil(t, got.Empty)
	assert.Equal(t, EmptyForYouMessage, got.Empty.Message)

	got = StudentEvents(testData(), Filter{Category: "art", College: "c3"}, nil)
	require.NotNil(t, got.Empty)
	assert.Equal(t, EmptyFilterMessage, got.Empty.Message)
}

func TestStudentEvents_BadgeIndependentOfFilter(t *testing.T) {
	rec := recs{ids: []string{"e1"}}

	got := StudentEvents(testData(), Filter{Category: "tech"}, rec)
	require.Len(t, got.Events, 2)
	assert.True(t, got.Events[0].Recommended)
	assert.False(t, got.Events[1].Recommended)
}

func TestStudentEvents_CardDecoration(t *testing.T) {
	data := testData()
	data.Events = append(data.Events, model.Event{ID: "e5", CollegeID: "c1", CategoryID: "missing"})

	got := StudentEvents(data, Filter{}, nil)
	byID := map[string]Card{}
	for _, c := range got.Events {
		byID[c.ID] = c
	}

	assert.Equal(t, "North", byID["e1"].CollegeName)
	assert.Equal(t, "Technology", byID["e1"].CategoryName)
	assert.Equal(t, "Nov 14, 2026", byID["e1"].DisplayDate)
	assert.Equal(t, "bad-date", byID["e4"].DisplayDate)
	assert.Equal(t, "", byID["e5"].CategoryName)
}

func TestStudentEvents_Query(t *testing.T) {
	tests := []struct {
		q    string
		want []string
	}{
		{"hack", []string{"e1"}},
		{"HACKATHON", []string{"e1"}},
		{"cafe lumiere", []string{"e2"}},
		{"  ", []string{"e1", "e2", "e4"}},
		{"robotics", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got := StudentEvents(testData(), Filter{Query: tt.q}, nil)
			assert.Equal(t, tt.want, ids(got.Events))
		})
	}
}

func TestCollegeEvents(t *testing.T) {
	got := CollegeEvents(testData(), "c2")
	assert.Equal(t, "South", got.College.Name)
	assert.Equal(t, []string{"e3"}, ids(got.Events))
	assert.Nil(t, got.Empty)

	got = CollegeEvents(testData(), "c9")
	assert.Empty(t, got.Events)
	require.NotNil(t, got.Empty)
	assert.Equal(t, EmptyCollegeTitle, got.Empty.Title)
}

func TestAdminEvents(t *testing.T) {
	data := testData()
	data.Events = append(data.Events, model.Event{ID: "e9", CollegeID: "gone"})

	rows := AdminEvents(data)
	require.Len(t, rows, 5)
	assert.Equal(t, "South", rows[2].CollegeName)
	assert.Equal(t, MissingCollege, rows[4].CollegeName)
}

func TestStudentDetail(t *testing.T) {
	data := testData()
	e := &data.Events[0]
	e.LongDescription = "Build **fast**.\n\n<script>alert(1)</script>"
	e.Rules = []string{"Teams of four"}
	for i := 0; i < 13; i++ {
		e.Participants = append(e.Participants, model.Participant{ID: fmt.Sprintf("p%d", i)})
	}

	d, err := StudentDetail(data, "e1", recs{ids: []string{"e1"}})
	require.NoError(t, err)

	assert.True(t, d.Recommended)
	assert.Contains(t, d.LongDescriptionHTML, "<strong>fast</strong>")
	assert.NotContains(t, d.LongDescriptionHTML, "<script")
	assert.Equal(t, "Saturday, November 14, 2026", d.LongDate)
	assert.Len(t, d.Participants, ParticipantPreview)
	assert.Equal(t, 13, d.ParticipantTotal)
	assert.Equal(t, 3, d.MoreParticipants)
	assert.Equal(t, []string{"Teams of four"}, d.Rules)
}

func TestStudentDetail_NotVisible(t *testing.T) {
	_, err := StudentDetail(testData(), "e3", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = StudentDetail(testData(), "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenderDescription(t *testing.T) {
	html, err := RenderDescription("")
	require.NoError(t, err)
	assert.Empty(t, html)

	html, err = RenderDescription("[link](javascript:alert(1))")
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "javascript:"))
}
