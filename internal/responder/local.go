package responder

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
)

// LocalResponder answers without any network access: fixed Persian keyword
// matching on the latest user message selects among canned advice templates
// parameterized by the profile.
type LocalResponder struct{}

func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

func (r *LocalResponder) Reply(_ context.Context, messages []models.ChatMessage, profile models.UserProfile) (string, error) {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			last = messages[i].Content
			break
		}
	}
	last = strings.ToLower(last)

	switch {
	case containsAny(last, "بارداری", "حامله"):
		return pregnancyAdvice(profile), nil
	case containsAny(last, "نوزاد", "بچه"):
		return babyAdvice(profile), nil
	case containsAny(last, "تغذیه", "غذا"):
		return nutritionAdvice(profile), nil
	case containsAny(last, "علائم", "نشانه"):
		return symptomAdvice(profile), nil
	case containsAny(last, "ورزش", "فعالیت"):
		return exerciseAdvice(profile), nil
	}

	return generalAdvice(profile), nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func week(p models.UserProfile) int {
	if p.PregnancyWeek == nil {
		return 0
	}
	return *p.PregnancyWeek
}

func pregnancyAdvice(p models.UserProfile) string {
	w := week(p)

	if !p.IsPregnant() {
		return fmt.Sprintf("سلام %s! اگر قصد بارداری دارید، توصیه می‌کنم:\n\n• مصرف اسید فولیک (۴۰۰ میکروگرم روزانه)\n• رژیم غذایی متعادل\n• ورزش منظم\n• ترک سیگار و الکل\n• مشاوره با پزشک\n\nآیا سوال خاصی دارید؟", p.Name)
	}

	// Trimester boundaries at weeks 12 and 28.
	if w <= 12 {
		return fmt.Sprintf("%s عزیز، در سه‌ماهه اول بارداری (هفته %d):\n\n• مصرف اسید فولیک ضروری است\n• تهوع صبحگاهی طبیعی است\n• از غذاهای خام پرهیز کنید\n• استراحت کافی داشته باشید\n• ویزیت منظم پزشک\n\nنگران نباشید، همه چیز طبیعی پیش می‌رود!", p.Name, w)
	}
	if w <= 28 {
		return fmt.Sprintf("%s جان، در سه‌ماهه دوم (هفته %d):\n\n• احساس بهتری خواهید داشت\n• حرکات جنین را احساس می‌کنید\n• سونوگرافی مهم در این دوره\n• ورزش ملایم مفید است\n• مراقب افزایش وزن باشید\n\nدوره طلایی بارداری است!", p.Name, w)
	}
	return fmt.Sprintf("%s عزیز، در سه‌ماهه سوم (هفته %d):\n\n• آماده‌سازی برای زایمان\n• کلاس‌های بارداری مفید است\n• مراقب علائم زایمان باشید\n• کیف بیمارستان را آماده کنید\n• استراحت بیشتر\n\nتقریباً به پایان رسیده‌اید!", p.Name, w)
}

func babyAdvice(p models.UserProfile) string {
	return fmt.Sprintf("%s عزیز، نکات مهم مراقبت از نوزاد:\n\n• شیردهی انحصاری تا ۶ ماهگی\n• واکسیناسیون به موقع\n• خواب ایمن (روی پشت)\n• نظافت و بهداشت\n• ارتباط و صحبت با نوزاد\n• مراجعه منظم به پزشک\n\nصبور باشید، همه چیز یاد می‌گیرید!", p.Name)
}

func nutritionAdvice(p models.UserProfile) string {
	if p.IsPregnant() {
		return fmt.Sprintf("%s جان، تغذیه در بارداری:\n\n• پروتئین: گوشت، ماهی، تخم‌مرغ، حبوبات\n• کلسیم: لبنیات، کنجد، بادام\n• آهن: گوشت قرمز، اسفناج، عدس\n• اسید فولیک: سبزیجات برگ سبز\n• مایعات فراوان\n• پرهیز از غذاهای خام\n\nتغذیه متنوع کلید سلامتی است!", p.Name)
	}
	return fmt.Sprintf("%s عزیز، تغذیه سالم:\n\n• میوه و سبزیجات تازه\n• غلات کامل\n• پروتئین‌های سالم\n• لبنیات کم‌چرب\n• آب فراوان\n• محدود کردن شکر و نمک\n\nتعادل در همه چیز مهم است!", p.Name)
}

func exerciseAdvice(p models.UserProfile) string {
	if p.IsPregnant() {
		return fmt.Sprintf("%s عزیز، ورزش در بارداری (هفته %d):\n\n• پیاده‌روی روزانه ۳۰ دقیقه\n• شنا (بهترین ورزش بارداری)\n• یوگا و کشش\n• تمرینات تنفسی\n• پرهیز از ورزش‌های تماسی\n• توقف در صورت درد یا خونریزی\n\nحتماً با پزشک مشورت کنید!", p.Name, week(p))
	}
	return fmt.Sprintf("%s جان، ورزش برای سلامتی:\n\n• ۱۵۰ دقیقه ورزش متوسط در هفته\n• ترکیب ورزش هوازی و قدرتی\n• کشش و انعطاف‌پذیری\n• شروع تدریجی\n• گوش دادن به بدن\n\nورزش منظم کلید سلامتی است!", p.Name)
}

func symptomAdvice(p models.UserProfile) string {
	return fmt.Sprintf("%s عزیز، علائم مهم که نیاز به مراجعه فوری دارند:\n\n🚨 در بارداری:\n• خونریزی شدید\n• درد شکمی شدید\n• تب بالا\n• سردرد شدید\n• تورم ناگهانی\n\n🚨 در نوزاد:\n• تب بالای ۳۸ درجه\n• تنگی نفس\n• بی‌حالی\n• عدم خوردن شیر\n\nهمیشه به غریزه مادری خود اعتماد کنید!", p.Name)
}

func generalAdvice(p models.UserProfile) string {
	responses := []string{
		fmt.Sprintf("سلام %s! چطور می‌تونم کمکتون کنم؟ من اینجام تا در زمینه مادری و بارداری راهنماییتون کنم.", p.Name),
		fmt.Sprintf("%s عزیز، خوشحالم که با من صحبت می‌کنید! سوال خاصی دارید؟ می‌تونم در مورد بارداری، مراقبت از نوزاد یا سلامت مادر کمکتون کنم.", p.Name),
		fmt.Sprintf("%s جان، همیشه یادتون باشه که شما یک مادر فوق‌العاده هستید! چه سوالی دارید؟", p.Name),
		fmt.Sprintf("سلام %s! من اینجام تا کمکتون کنم. می‌تونید در مورد هر موضوعی که نگرانتونه سوال بپرسید.", p.Name),
	}
	return responses[rand.Intn(len(responses))]
}
