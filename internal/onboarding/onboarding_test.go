package onboarding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/onboarding"
)

func intPtr(v int) *int { return &v }

func TestStepFor_FirstUnmetField(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		want    onboarding.Step
	}{
		{"empty", models.UserProfile{}, onboarding.StepName},
		{"name only", models.UserProfile{Name: "مریم"}, onboarding.StepAge},
		{"name and age", models.UserProfile{Name: "مریم", Age: intPtr(28)}, onboarding.StepPregnancyWeek},
		{
			"week zero counts as answered",
			models.UserProfile{Name: "مریم", Age: intPtr(28), PregnancyWeek: intPtr(0)},
			onboarding.StepMedicalConditions,
		},
		{
			"all populated",
			models.UserProfile{Name: "مریم", Age: intPtr(28), PregnancyWeek: intPtr(12), MedicalConditions: "ندارم"},
			onboarding.StepComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, onboarding.StepFor(tt.profile))
		})
	}
}

func TestStepFor_Idempotent(t *testing.T) {
	p := models.UserProfile{Name: "سارا", Age: intPtr(30)}
	first := onboarding.StepFor(p)
	second := onboarding.StepFor(p)
	assert.Equal(t, first, second)
}

func TestAdvance_FullDialogue(t *testing.T) {
	var p models.UserProfile

	res := onboarding.Advance(p, onboarding.StepName, "  مریم ")
	require.True(t, res.Advanced)
	assert.Equal(t, "مریم", res.Profile.Name)
	assert.Contains(t, res.Reply, "مریم")
	assert.Equal(t, onboarding.StepAge, res.Next)

	res = onboarding.Advance(res.Profile, res.Next, "28")
	require.True(t, res.Advanced)
	require.NotNil(t, res.Profile.Age)
	assert.Equal(t, 28, *res.Profile.Age)
	assert.Equal(t, onboarding.StepPregnancyWeek, res.Next)

	res = onboarding.Advance(res.Profile, res.Next, "12")
	require.True(t, res.Advanced)
	assert.Equal(t, onboarding.StepMedicalConditions, res.Next)

	res = onboarding.Advance(res.Profile, res.Next, "ندارم")
	require.True(t, res.Advanced)
	assert.True(t, res.Profile.IsComplete)
	assert.Equal(t, onboarding.StepComplete, res.Next)
	assert.True(t, res.Profile.Populated())
}

func TestAdvance_AgeOutOfRange(t *testing.T) {
	p := models.UserProfile{Name: "مریم"}

	res := onboarding.Advance(p, onboarding.StepAge, "200")
	assert.False(t, res.Advanced)
	assert.Equal(t, onboarding.StepAge, res.Next)
	assert.Nil(t, res.Profile.Age)
	assert.Equal(t, onboarding.InvalidAgeMessage, res.Reply)
}

func TestAdvance_AgeNotANumber(t *testing.T) {
	p := models.UserProfile{Name: "مریم"}

	res := onboarding.Advance(p, onboarding.StepAge, "بیست و هشت")
	assert.False(t, res.Advanced)
	assert.Equal(t, onboarding.InvalidAgeMessage, res.Reply)
	assert.Equal(t, p, res.Profile)
}

func TestAdvance_WeekZeroIsValid(t *testing.T) {
	p := models.UserProfile{Name: "مریم", Age: intPtr(28)}

	res := onboarding.Advance(p, onboarding.StepPregnancyWeek, "0")
	require.True(t, res.Advanced)
	require.NotNil(t, res.Profile.PregnancyWeek)
	assert.Equal(t, 0, *res.Profile.PregnancyWeek)
	assert.Equal(t, onboarding.StepMedicalConditions, res.Next)
	assert.False(t, res.Profile.IsPregnant())
}

func TestAdvance_WeekOutOfRange(t *testing.T) {
	p := models.UserProfile{Name: "مریم", Age: intPtr(28)}

	res := onboarding.Advance(p, onboarding.StepPregnancyWeek, "43")
	assert.False(t, res.Advanced)
	assert.Equal(t, onboarding.InvalidWeekMessage, res.Reply)
	assert.Nil(t, res.Profile.PregnancyWeek)
}

func TestPopulated_MatchesIsComplete(t *testing.T) {
	p := models.UserProfile{
		Name:              "سارا",
		Age:               intPtr(32),
		PregnancyWeek:     intPtr(0),
		MedicalConditions: "دیابت",
	}
	assert.True(t, p.Populated())

	p.MedicalConditions = ""
	assert.False(t, p.Populated())
}
