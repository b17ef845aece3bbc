package model

// Таблица начисления баллов за действия пользователя.
const (
	ExpenseLoggedPoints         = 5
	FirstExpenseOfDayPoints     = 10
	DailyStreakPoints           = 15
	WeeklyStreakBonusPoints     = 50
	BudgetSetPoints             = 25
	BudgetMetPoints             = 30
	SavingsGoalSetPoints        = 40
	SavingsGoalAchievedPoints   = 100
	ChatQuestionAskedPoints     = 10
	FinancialLessonReadPoints   = 20
	WeeklyReviewCompletedPoints = 75
)

// Баллы за вехи, начисляемые через произвольное начисление.
const (
	FirstWeekCompletePoints  = 100
	FirstMonthCompletePoints = 200
	DebtReductionPoints      = 150
	HelpedOtherUserPoints    = 50
	SharedFinancialTipPoints = 25
)

// WeeklyStreakLength задаёт длину серии, за кратность которой начисляется недельный бонус.
const WeeklyStreakLength = 7

// Action описывает вид действия пользователя, за которое начисляются баллы.
type Action string

const (
	ActionExpenseLogged       Action = "expense"
	ActionChatInteraction     Action = "chat"
	ActionFinancialLesson     Action = "lesson"
	ActionSavingsGoalSet      Action = "savings-goal"
	ActionSavingsGoalAchieved Action = "savings-goal-achieved"
	ActionWeeklyReview        Action = "weekly-review"
	ActionBudgetSet           Action = "budget"
	ActionBudgetMet           Action = "budget-met"
)

// Actions возвращает все поддерживаемые виды действий.
func Actions() []Action {
	return []Action{
		ActionExpenseLogged,
		ActionChatInteraction,
		ActionFinancialLesson,
		ActionSavingsGoalSet,
		ActionSavingsGoalAchieved,
		ActionWeeklyReview,
		ActionBudgetSet,
		ActionBudgetMet,
	}
}
