package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/resume-screener/internal/profile"
)

func profileWith(skills []profile.Skill, years float64, hasYears bool, seniority ...string) profile.Profile {
	return profile.Profile{
		Skills:    skills,
		Years:     years,
		HasYears:  hasYears,
		Seniority: seniority,
	}
}

func TestKeywordMatchIsShareOfRequirement(t *testing.T) {
	requirement := profileWith([]profile.Skill{
		{Term: "go", Category: "languages"},
		{Term: "kubernetes", Category: "devops"},
		{Term: "terraform", Category: "devops"},
		{Term: "postgresql", Category: "databases"},
	}, 0, false)

	candidate := profileWith([]profile.Skill{
		{Term: "go", Category: "languages"},
		{Term: "kubernetes", Category: "devops"},
		{Term: "react", Category: "frameworks"},
	}, 0, false)

	components := LocalScorer{}.Score(candidate, requirement)
	assert.Equal(t, 0.5, components.Keyword, "2 of 4 required skills present")
}

func TestKeywordMatchEmptyRequirement(t *testing.T) {
	candidate := profileWith([]profile.Skill{{Term: "go", Category: "languages"}}, 0, false)

	components := LocalScorer{}.Score(candidate, profile.Profile{})
	assert.Zero(t, components.Keyword)
	assert.Zero(t, components.Category)
}

func TestCategoryMatchCountsDistinctCategories(t *testing.T) {
	requirement := profileWith([]profile.Skill{
		{Term: "go", Category: "languages"},
		{Term: "kubernetes", Category: "devops"},
	}, 0, false)

	candidate := profileWith([]profile.Skill{
		{Term: "python", Category: "languages"},
	}, 0, false)

	components := LocalScorer{}.Score(candidate, requirement)
	assert.Equal(t, 0.5, components.Category, "covers languages but not devops")
}

func TestExperienceMatch(t *testing.T) {
	cases := []struct {
		name        string
		candidate   profile.Profile
		requirement profile.Profile
		want        float64
	}{
		{
			name:        "exceeds requirement",
			candidate:   profileWith(nil, 7, true),
			requirement: profileWith(nil, 5, true),
			want:        1.0,
		},
		{
			name:        "half of requirement",
			candidate:   profileWith(nil, 5, true),
			requirement: profileWith(nil, 10, true),
			want:        0.5,
		},
		{
			name:        "no requirement stated",
			candidate:   profileWith(nil, 0, false),
			requirement: profileWith(nil, 0, false),
			want:        1.0,
		},
		{
			name:        "candidate figure missing, seniority overlaps",
			candidate:   profileWith(nil, 0, false, "senior"),
			requirement: profileWith(nil, 5, true, "senior", "lead"),
			want:        1.0,
		},
		{
			name:        "candidate figure missing, no seniority overlap",
			candidate:   profileWith(nil, 0, false),
			requirement: profileWith(nil, 5, true, "senior"),
			want:        0.5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			components := LocalScorer{}.Score(tc.candidate, tc.requirement)
			assert.Equal(t, tc.want, components.Experience)
		})
	}
}

func TestKeywordMatchMonotonic(t *testing.T) {
	requirement := profileWith([]profile.Skill{
		{Term: "python", Category: "languages"},
		{Term: "aws", Category: "cloud"},
		{Term: "kubernetes", Category: "devops"},
		{Term: "react", Category: "frameworks"},
	}, 0, false)

	candidate := profileWith([]profile.Skill{
		{Term: "python", Category: "languages"},
		{Term: "aws", Category: "cloud"},
	}, 0, false)

	before := LocalScorer{}.Score(candidate, requirement).Keyword
	assert.Equal(t, 0.5, before)

	candidate.Skills = append(candidate.Skills, profile.Skill{Term: "kubernetes", Category: "devops"})
	after := LocalScorer{}.Score(candidate, requirement).Keyword
	assert.GreaterOrEqual(t, after, before)
	assert.Equal(t, 0.75, after)
}

func TestTextSimilarity(t *testing.T) {
	text := "building distributed systems with careful observability practices"

	identical := LocalScorer{}.Score(
		profile.Profile{RawText: text},
		profile.Profile{RawText: text},
	)
	assert.Equal(t, 1.0, identical.TextSimilarity)

	disjoint := LocalScorer{}.Score(
		profile.Profile{RawText: "gardening cooking painting"},
		profile.Profile{RawText: "quantum chromodynamics lattice"},
	)
	assert.Zero(t, disjoint.TextSimilarity)

	empty := LocalScorer{}.Score(profile.Profile{}, profile.Profile{})
	assert.Zero(t, empty.TextSimilarity)
}

func TestLocalScoreBounds(t *testing.T) {
	perfect := Components{Keyword: 1, Category: 1, Experience: 1, TextSimilarity: 1}
	assert.Equal(t, 10.0, perfect.Local())

	nothing := Components{}
	assert.Zero(t, nothing.Local())

	// Component weights sum to 1, so a mixed profile stays inside [0,10].
	mixed := Components{Keyword: 0.5, Category: 0.5, Experience: 1, TextSimilarity: 0.1}
	assert.GreaterOrEqual(t, mixed.Local(), 0.0)
	assert.LessOrEqual(t, mixed.Local(), 10.0)
}
