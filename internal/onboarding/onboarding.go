// Package onboarding implements the fixed four-question guided dialogue that
// collects a user's profile before free-form chat is enabled.
package onboarding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

// Step identifies the current position in the onboarding dialogue.
// Steps advance in strict order; StepComplete is terminal.
type Step int

const (
	StepName Step = iota
	StepAge
	StepPregnancyWeek
	StepMedicalConditions
	StepComplete
)

const (
	minAge  = 10
	maxAge  = 60
	minWeek = 0
	maxWeek = 42
)

const (
	WelcomeMessage = "سلام! من هوش مصنوعی مامی‌لند هستم. لطفاً برای شروع کار اسم خودتون رو بگید."

	askPregnancyWeekMessage     = "لطفاً بگید هفته چندم بارداری هستید؟ (اگر باردار نیستید، عدد 0 را وارد کنید)"
	askMedicalConditionsMessage = "آیا بیماری زمینه‌ای دارید؟ اگر دارید لطفاً توضیح دهید، در غیر این صورت \"ندارم\" بنویسید."
	completeMessage             = "عالی! اطلاعات شما ذخیره شد و می‌توانید ادامه سوالاتتون رو بپرسید."

	InvalidAgeMessage  = "لطفاً سن معتبری وارد کنید (۱۰ تا ۶۰)."
	InvalidWeekMessage = "لطفاً یک عدد بین ۰ تا ۴۲ وارد کنید."
)

func askAgeMessage(name string) string {
	return fmt.Sprintf("خوشبختم %s! لطفاً سن خودتون رو بگید.", name)
}

// StepFor derives the current step from a profile: the first unmet field in
// order determines the step. PregnancyWeek is a nil check, not a zero check,
// so week 0 counts as answered. The derivation is pure, so resuming a session
// always reproduces the same step.
func StepFor(p models.UserProfile) Step {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return StepName
	case p.Age == nil:
		return StepAge
	case p.PregnancyWeek == nil:
		return StepPregnancyWeek
	case strings.TrimSpace(p.MedicalConditions) == "":
		return StepMedicalConditions
	default:
		return StepComplete
	}
}

// Result is the outcome of feeding one user message into the dialogue.
type Result struct {
	Reply   string
	Profile models.UserProfile
	Next    Step
	// Advanced is false when the input was rejected and the profile
	// was left untouched.
	Advanced bool
}

// Advance applies one raw user message at the given step. Invalid input
// re-prompts without mutating the profile. Calling Advance at StepComplete
// returns the profile unchanged; complete profiles route to the responder
// instead.
func Advance(p models.UserProfile, step Step, text string) Result {
	text = strings.TrimSpace(text)

	switch step {
	case StepName:
		p.Name = text
		return Result{Reply: askAgeMessage(p.Name), Profile: p, Next: StepAge, Advanced: true}

	case StepAge:
		age, err := strconv.Atoi(text)
		if err != nil || age < minAge || age > maxAge {
			return Result{Reply: InvalidAgeMessage, Profile: p, Next: StepAge}
		}
		p.Age = &age
		return Result{Reply: askPregnancyWeekMessage, Profile: p, Next: StepPregnancyWeek, Advanced: true}

	case StepPregnancyWeek:
		week, err := strconv.Atoi(text)
		if err != nil || week < minWeek || week > maxWeek {
			return Result{Reply: InvalidWeekMessage, Profile: p, Next: StepPregnancyWeek}
		}
		p.PregnancyWeek = &week
		return Result{Reply: askMedicalConditionsMessage, Profile: p, Next: StepMedicalConditions, Advanced: true}

	case StepMedicalConditions:
		p.MedicalConditions = text
		p.IsComplete = true
		return Result{Reply: completeMessage, Profile: p, Next: StepComplete, Advanced: true}
	}

	return Result{Profile: p, Next: StepComplete}
}
