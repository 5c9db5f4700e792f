// Package responder turns a conversation and a user profile into a single
// assistant reply, either through the hosted answer proxy or a purely local
// keyword-matched fallback.
package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

// ApologyMessage is returned in place of a reply on any transport or parse
// failure. Responder errors never surface to end users.
const ApologyMessage = "متأسفم، الان نمی‌تونم جواب بدم. لطفاً چند لحظه دیگه دوباره تلاش کنید."

// Responder produces one assistant reply for the given ordered transcript.
type Responder interface {
	Reply(ctx context.Context, messages []models.ChatMessage, profile models.UserProfile) (string, error)
}

const systemPreamble = "تو دستیار هوشمند مامی‌لند هستی. فقط به زبان فارسی و با لحن صمیمی جواب بده. " +
	"جواب‌ها کوتاه باشند، بین ۲ تا ۵ خط. فقط به سوالات پزشکی و مرتبط با بارداری و مادری جواب بده؛ " +
	"سوالات غیرپزشکی یا خیلی تخصصی را محترمانه به منابع مناسب ارجاع بده."

// BuildPrompt renders the outbound prompt: the fixed style preamble, the
// profile fields when onboarding is complete, then the full transcript as
// alternating User:/Assistant: lines.
func BuildPrompt(messages []models.ChatMessage, profile models.UserProfile) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n")

	if profile.IsComplete {
		b.WriteString(fmt.Sprintf("اطلاعات کاربر: نام %s", profile.Name))
		if profile.Age != nil {
			b.WriteString(fmt.Sprintf("، سن %d", *profile.Age))
		}
		if profile.PregnancyWeek != nil {
			if *profile.PregnancyWeek > 0 {
				b.WriteString(fmt.Sprintf("، هفته %d بارداری", *profile.PregnancyWeek))
			} else {
				b.WriteString("، باردار نیست")
			}
		}
		if profile.MedicalConditions != "" {
			b.WriteString(fmt.Sprintf("، بیماری زمینه‌ای: %s", profile.MedicalConditions))
		}
		b.WriteString("\n\n")
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString("User: ")
		case models.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	return b.String()
}
