package domain

import "time"

// PostpartumGuide carries the weekly recovery content shown after the due
// date has passed.
type PostpartumGuide struct {
	Week            int
	BabyDevelopment string
	SelfCare        string
}

// postpartumGuides covers weeks 1 through 12. Week 0 clamps to week 1; weeks
// beyond 12 fall back to the rotating daily reminder.
var postpartumGuides = []PostpartumGuide{
	{1, "Baby is adjusting to life outside the womb and feeds every 2-3 hours.", "Rest whenever the baby sleeps and keep water within reach while nursing."},
	{2, "Baby may regain their birth weight and starts brief alert periods.", "Accept help with meals and chores; your body is still healing."},
	{3, "Baby begins to focus on faces 8-12 inches away.", "Short walks are fine if bleeding has slowed; stop if it picks up."},
	{4, "Baby may hold brief eye contact and startle at loud sounds.", "Watch for signs of postpartum depression and tell your provider how you feel."},
	{5, "Baby starts smiling socially and cooing.", "Gentle pelvic-floor exercises can begin if your provider approves."},
	{6, "Baby's neck is getting stronger during tummy time.", "Your six-week checkup is due; bring every question you have written down."},
	{7, "Baby tracks moving objects and responds to your voice.", "Ease back into light exercise; sleep still outranks workouts."},
	{8, "Baby may sleep in slightly longer stretches at night.", "If you feel ready, re-establish routines that make you feel like yourself."},
	{9, "Baby bats at objects and studies their own hands.", "Eat iron-rich foods; fatigue can signal low iron after delivery."},
	{10, "Baby laughs and anticipates familiar routines.", "Check in on your support network; isolation creeps up around this point."},
	{11, "Baby pushes up on forearms during tummy time.", "Hair shedding is normal now; it settles over the next few months."},
	{12, "Baby reaches for toys and may roll from tummy to side.", "Celebrate the first three months and book any deferred appointments."},
}

// dailyReminders rotate once per calendar day for mothers past the guided
// weeks.
var dailyReminders = []string{
	"Drink a full glass of water before each feeding.",
	"Step outside for ten minutes of daylight today.",
	"Text someone who makes you laugh.",
	"Eat something green with at least one meal.",
	"Stretch your shoulders and neck between feedings.",
	"Say one kind thing to yourself out loud.",
	"Put your feet up for five unapologetic minutes.",
}

// GuideForWeek returns the postpartum guide entry for the given
// weeks-postpartum value. Weeks below 1 clamp to the first entry. Weeks past
// the table return false; callers show the daily reminder instead.
func GuideForWeek(week int) (PostpartumGuide, bool) {
	if week < 1 {
		return postpartumGuides[0], true
	}
	if week > len(postpartumGuides) {
		return PostpartumGuide{}, false
	}
	return postpartumGuides[week-1], true
}

// DailyReminder picks the reminder for the given day. The index hashes the
// calendar date so the message is stable all day and changes once per day.
func DailyReminder(now time.Time) string {
	y, m, d := now.UTC().Date()
	idx := (y*10000 + int(m)*100 + d) % len(dailyReminders)
	return dailyReminders[idx]
}
